package reactions

import (
	"context"
	"fmt"

	"github.com/adamavenir/auradm/internal/types"
)

// QuickEmojis is the one-click reaction bar shown on each message.
var QuickEmojis = []string{"👍", "❤️", "😂", "😮", "😢", "🙏"}

// Badge is one aggregated emoji reaction on a message.
type Badge struct {
	Emoji         string
	Count         int
	ViewerReacted bool
	Users         []string
}

// Aggregate groups raw reaction rows by emoji, in order of first appearance.
// Counts come from the server; a row without a count falls back to the
// number of listed users.
func Aggregate(rows []types.Reaction) []Badge {
	var badges []Badge
	index := make(map[string]int)
	for _, row := range rows {
		if row.Emoji == "" {
			continue
		}
		i, ok := index[row.Emoji]
		if !ok {
			i = len(badges)
			index[row.Emoji] = i
			badges = append(badges, Badge{Emoji: row.Emoji})
		}
		count := row.Count
		if count == 0 {
			count = len(row.Users)
		}
		badges[i].Count += count
		for _, u := range row.Users {
			if u.IsMe {
				badges[i].ViewerReacted = true
			}
			if !containsString(badges[i].Users, u.Username) {
				badges[i].Users = append(badges[i].Users, u.Username)
			}
		}
	}
	return badges
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// Op is the request a toggle issues.
type Op int

const (
	OpAdd Op = iota
	OpRemove
)

func (o Op) String() string {
	if o == OpRemove {
		return "remove"
	}
	return "add"
}

// Decide returns OpRemove when the viewer already reacted with emoji and
// OpAdd otherwise. Other emoji the viewer used are left alone.
func Decide(rows []types.Reaction, emoji string) Op {
	for _, badge := range Aggregate(rows) {
		if badge.Emoji == emoji && badge.ViewerReacted {
			return OpRemove
		}
	}
	return OpAdd
}

// Reactor issues reaction requests.
type Reactor interface {
	AddReaction(ctx context.Context, messageID int64, emoji string) error
	RemoveReaction(ctx context.Context, messageID int64, emoji string) error
}

// Toggle issues the add or remove request for emoji on msg. Nothing is
// patched locally; callers refetch the message list on success.
func Toggle(ctx context.Context, r Reactor, msg types.Message, emoji string) (Op, error) {
	op := Decide(msg.Reactions, emoji)
	var err error
	if op == OpRemove {
		err = r.RemoveReaction(ctx, msg.ID, emoji)
	} else {
		err = r.AddReaction(ctx, msg.ID, emoji)
	}
	if err != nil {
		return op, fmt.Errorf("%s reaction %s: %w", op, emoji, err)
	}
	return op, nil
}
