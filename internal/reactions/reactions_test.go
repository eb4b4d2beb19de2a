package reactions

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/api/apitest"
	"github.com/adamavenir/auradm/internal/types"
)

func TestAggregateGroupsByEmoji(t *testing.T) {
	rows := []types.Reaction{
		{Emoji: "👍", Count: 2, Users: []types.ReactionUser{{Username: "alice"}, {Username: "me", IsMe: true}}},
		{Emoji: "😂", Users: []types.ReactionUser{{Username: "bob"}}},
		{Emoji: "👍", Count: 1, Users: []types.ReactionUser{{Username: "carol"}}},
	}
	got := Aggregate(rows)
	want := []Badge{
		{Emoji: "👍", Count: 3, ViewerReacted: true, Users: []string{"alice", "me", "carol"}},
		{Emoji: "😂", Count: 1, Users: []string{"bob"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("aggregate: got %+v want %+v", got, want)
	}
}

func TestDecide(t *testing.T) {
	rows := []types.Reaction{
		{Emoji: "👍", Count: 1, Users: []types.ReactionUser{{Username: "me", IsMe: true}}},
		{Emoji: "❤️", Count: 1, Users: []types.ReactionUser{{Username: "alice"}}},
	}
	cases := []struct {
		emoji string
		want  Op
	}{
		{emoji: "👍", want: OpRemove},
		{emoji: "❤️", want: OpAdd},
		{emoji: "🙏", want: OpAdd},
	}
	for _, tc := range cases {
		if got := Decide(rows, tc.emoji); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.emoji, got, tc.want)
		}
	}
}

func TestToggleTwiceRestoresAggregate(t *testing.T) {
	srv := apitest.New(t, "me")
	threadID := srv.SeedThread("alice")
	msgID := srv.AddMessage(threadID, "alice", "look")
	srv.React(msgID, "alice", "😂")
	client, err := api.NewClient(srv.BaseURL(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	fetch := func() types.Message {
		t.Helper()
		messages, err := client.ListMessages(ctx, threadID)
		if err != nil {
			t.Fatalf("list messages: %v", err)
		}
		return messages[0]
	}

	before := fetch()
	original := Aggregate(before.Reactions)

	op, err := Toggle(ctx, client, before, "😂")
	if err != nil || op != OpAdd {
		t.Fatalf("first toggle: op=%v err=%v", op, err)
	}
	middle := fetch()
	if badges := Aggregate(middle.Reactions); badges[0].Count != 2 || !badges[0].ViewerReacted {
		t.Fatalf("after add: %+v", badges)
	}

	op, err = Toggle(ctx, client, middle, "😂")
	if err != nil || op != OpRemove {
		t.Fatalf("second toggle: op=%v err=%v", op, err)
	}
	if got := Aggregate(fetch().Reactions); !reflect.DeepEqual(got, original) {
		t.Fatalf("aggregate after two toggles: got %+v want %+v", got, original)
	}
}

func TestMultipleEmojiPerViewer(t *testing.T) {
	srv := apitest.New(t, "me")
	threadID := srv.SeedThread("alice")
	msgID := srv.AddMessage(threadID, "alice", "look")
	client, err := api.NewClient(srv.BaseURL(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	msg := types.Message{ID: msgID}
	for _, emoji := range []string{"👍", "❤️"} {
		if _, err := Toggle(ctx, client, msg, emoji); err != nil {
			t.Fatalf("toggle %s: %v", emoji, err)
		}
	}
	messages, err := client.ListMessages(ctx, threadID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	badges := Aggregate(messages[0].Reactions)
	if len(badges) != 2 || !badges[0].ViewerReacted || !badges[1].ViewerReacted {
		t.Fatalf("expected both reactions kept, got %+v", badges)
	}
}

func TestLikeRollbackOnFailure(t *testing.T) {
	cases := []types.LikeState{
		{Liked: false, Count: 3},
		{Liked: true, Count: 1},
		{Liked: false, Count: 0},
	}
	for _, initial := range cases {
		like := NewLike(initial, false)
		pending, err := like.Begin()
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if like.State().Liked == initial.Liked {
			t.Fatalf("%+v: expected optimistic flip", initial)
		}
		like.Resolve(pending, types.LikeState{}, errors.New("network down"))
		if got := like.State(); got != initial {
			t.Fatalf("rollback: got %+v want %+v", got, initial)
		}
	}
}

func TestLikeAdoptsServerState(t *testing.T) {
	like := NewLike(types.LikeState{Liked: false, Count: 3}, false)
	pending, _ := like.Begin()
	if got := like.State(); got != (types.LikeState{Liked: true, Count: 4}) {
		t.Fatalf("optimistic: got %+v", got)
	}
	like.Resolve(pending, types.LikeState{Liked: true, Count: 10}, nil)
	if got := like.State(); got != (types.LikeState{Liked: true, Count: 10}) {
		t.Fatalf("server state: got %+v", got)
	}
}

func TestLikeRefusesSecondToggleInFlight(t *testing.T) {
	initial := types.LikeState{Liked: false, Count: 5}
	like := NewLike(initial, false)
	first, err := like.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := like.Begin(); !errors.Is(err, ErrPending) {
		t.Fatalf("second begin: got %v want ErrPending", err)
	}
	if got := like.State(); got != (types.LikeState{Liked: true, Count: 6}) {
		t.Fatalf("second begin must not flip again: got %+v", got)
	}
	like.Resolve(first, types.LikeState{}, errors.New("timeout"))
	if got := like.State(); got != initial {
		t.Fatalf("failed toggle: got %+v want %+v", got, initial)
	}
	if like.Pending() {
		t.Fatal("pending after resolve")
	}
}

func TestLikeIgnoresStaleCompletion(t *testing.T) {
	like := NewLike(types.LikeState{Liked: false, Count: 0}, false)
	first, _ := like.Begin()
	like.Resolve(first, types.LikeState{Liked: true, Count: 1}, nil)
	second, _ := like.Begin()
	if like.Resolve(first, types.LikeState{}, errors.New("timeout")) {
		t.Fatal("completion of an earlier toggle must not apply")
	}
	like.Resolve(second, types.LikeState{Liked: false, Count: 0}, nil)
	if got := like.State(); got != (types.LikeState{}) {
		t.Fatalf("state: got %+v", got)
	}
}

func TestLikeRefreshWaitsForToggle(t *testing.T) {
	like := NewLike(types.LikeState{Liked: false, Count: 1}, false)
	pending, _ := like.Begin()
	like.Refresh(types.LikeState{Liked: false, Count: 9})
	if got := like.State(); got != (types.LikeState{Liked: true, Count: 2}) {
		t.Fatalf("refresh during toggle: got %+v", got)
	}
	like.Resolve(pending, types.LikeState{Liked: true, Count: 2}, nil)
	like.Refresh(types.LikeState{Liked: true, Count: 9})
	if got := like.State(); got != (types.LikeState{Liked: true, Count: 9}) {
		t.Fatalf("refresh after toggle: got %+v", got)
	}
}

func TestLikeAnonymous(t *testing.T) {
	like := NewLike(types.LikeState{Liked: true, Count: 5}, true)
	if like.State().Liked {
		t.Fatal("anonymous viewer cannot have liked")
	}
	if _, err := like.Begin(); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("expected ErrAnonymous, got %v", err)
	}
}

func TestToggleLikeAgainstServer(t *testing.T) {
	srv := apitest.New(t, "me")
	srv.SetLike(1, false, 2)
	client, err := api.NewClient(srv.BaseURL(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	like := NewLike(types.LikeState{Liked: false, Count: 2}, false)

	state, err := ToggleLike(context.Background(), client, like, 1)
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if state != (types.LikeState{Liked: true, Count: 3}) {
		t.Fatalf("state: got %+v", state)
	}

	srv.Fail("POST", "/photos/1/like/", 500)
	state, err = ToggleLike(context.Background(), client, like, 1)
	if err == nil {
		t.Fatal("expected failure")
	}
	if state != (types.LikeState{Liked: true, Count: 3}) {
		t.Fatalf("rolled back state: got %+v", state)
	}
}
