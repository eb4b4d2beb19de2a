package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamavenir/auradm/internal/api/apitest"
	"github.com/adamavenir/auradm/internal/callsignal"
)

const testToken = "secret-token"

type harness struct {
	t          *testing.T
	srv        *apitest.Server
	configPath string
	logPath    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("AURADM_ACCOUNT", "me")
	t.Setenv("AURADM_MESSAGES_INTERVAL", "10ms")

	srv := apitest.New(t, "me")
	srv.RequireToken(testToken)
	return &harness{
		t:          t,
		srv:        srv,
		configPath: filepath.Join(dir, "config.toml"),
		logPath:    filepath.Join(dir, "auradm.log"),
	}
}

// run executes the root command with the harness flags and returns stdout,
// stderr and the command error.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	return h.runWithToken(testToken, args...)
}

func (h *harness) runWithToken(token string, args ...string) (string, string, error) {
	h.t.Helper()
	cmd := NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	full := append([]string{
		"--config", h.configPath,
		"--log-file", h.logPath,
		"--base-url", h.srv.BaseURL(),
		"--token", token,
	}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	stdout, stderr, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("%v: %v\nstderr: %s", args, err, stderr)
	}
	return stdout
}

func TestVersionFlag(t *testing.T) {
	cmd := NewRootCmd("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := out.String(); got != "auradm version 1.2.3\n" {
		t.Fatalf("version: got %q", got)
	}
}

func TestHelpListsCommands(t *testing.T) {
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, name := range []string{"chat", "threads", "messages", "send", "react", "call", "comments", "watch", "config"} {
		if !strings.Contains(out.String(), name) {
			t.Fatalf("help is missing %q:\n%s", name, out.String())
		}
	}
}

func TestThreadsSelectsMostRecent(t *testing.T) {
	h := newHarness(t)
	alice := h.srv.SeedThread("alice")
	bob := h.srv.SeedThread("bob")
	h.srv.AddMessage(alice, "alice", "old news")
	h.srv.AddMessage(bob, "bob", "fresh")

	out := h.mustRun("threads")
	if !strings.Contains(out, fmt.Sprintf("* #%d bob", bob)) {
		t.Fatalf("threads: bob should be selected:\n%s", out)
	}
	if !strings.Contains(out, "fresh") {
		t.Fatalf("threads: missing preview:\n%s", out)
	}
}

func TestOpenPersistsSelection(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("carol", "Carol C", true)
	bob := h.srv.SeedThread("bob")
	h.srv.AddMessage(bob, "bob", "hello")

	out := h.mustRun("open", "@carol")
	if !strings.Contains(out, "Chat started with @carol") {
		t.Fatalf("open: got %q", out)
	}
	if got := h.srv.ThreadCount(); got != 2 {
		t.Fatalf("thread count: got %d want 2", got)
	}

	out = h.mustRun("threads")
	if !strings.Contains(out, "* #") || !strings.Contains(out, "Carol C") {
		t.Fatalf("threads after open:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "*") && !strings.Contains(line, "Carol C") {
			t.Fatalf("selection was not restored, selected line %q", line)
		}
	}
}

func TestMessagesShowInviteCards(t *testing.T) {
	h := newHarness(t)
	id := h.srv.SeedThread("bob")
	h.srv.AddMessage(id, "bob", callsignal.EncodeStart(callsignal.Video, "sess-1"))

	out := h.mustRun("messages", fmt.Sprint(id))
	if !strings.Contains(out, "[Video Call] Join Video Call") {
		t.Fatalf("messages: missing invite card:\n%s", out)
	}
	if strings.Contains(out, "sess-1") {
		t.Fatalf("messages: raw marker leaked:\n%s", out)
	}
}

func TestMessagesWithoutThreadsAsksToSelect(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("messages")
	if err == nil {
		t.Fatalf("messages: expected error")
	}
	if !strings.Contains(stderr, "Select a conversation") {
		t.Fatalf("stderr: got %q", stderr)
	}
}

func TestSendPostsToSelectedThread(t *testing.T) {
	h := newHarness(t)
	id := h.srv.SeedThread("bob")
	h.srv.AddMessage(id, "bob", "hi")

	out := h.mustRun("send", "hello", "there")
	if !strings.HasPrefix(out, "Sent message #") {
		t.Fatalf("send: got %q", out)
	}
	out = h.mustRun("messages")
	if !strings.Contains(out, "you") || !strings.Contains(out, "hello there") {
		t.Fatalf("messages after send:\n%s", out)
	}
}

func TestSendBlankFailsWithoutRequest(t *testing.T) {
	h := newHarness(t)
	id := h.srv.SeedThread("bob")
	h.srv.AddMessage(id, "bob", "hi")
	path := fmt.Sprintf("/dm/threads/%d/messages/", id)

	_, _, err := h.run("send", "   ")
	if err == nil {
		t.Fatalf("send blank: expected error")
	}
	if got := h.srv.Hits(http.MethodPost, path); got != 0 {
		t.Fatalf("POST hits: got %d want 0", got)
	}
}

func TestReactTogglesReaction(t *testing.T) {
	h := newHarness(t)
	id := h.srv.SeedThread("bob")
	msgID := h.srv.AddMessage(id, "bob", "nice")

	out := h.mustRun("react", fmt.Sprint(msgID), "👍")
	if !strings.Contains(out, fmt.Sprintf("Added 👍 on #%d", msgID)) || !strings.Contains(out, "👍 1") {
		t.Fatalf("react add: got %q", out)
	}
	out = h.mustRun("react", fmt.Sprint(msgID), "👍")
	if !strings.Contains(out, fmt.Sprintf("Removed 👍 on #%d", msgID)) {
		t.Fatalf("react remove: got %q", out)
	}
}

func TestRmDeletesOwnMessage(t *testing.T) {
	h := newHarness(t)
	id := h.srv.SeedThread("bob")
	h.srv.AddMessage(id, "bob", "hi")
	mine := h.srv.AddMessage(id, "me", "oops")

	out := h.mustRun("rm", fmt.Sprint(mine))
	if out != fmt.Sprintf("Message deleted #%d\n", mine) {
		t.Fatalf("rm: got %q", out)
	}
	out = h.mustRun("messages")
	if strings.Contains(out, "oops") {
		t.Fatalf("deleted message still listed:\n%s", out)
	}
}

func TestSearchUsers(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("dana", "Dana D", true)

	tests := []struct {
		query string
		want  string
	}{
		{"dan", "@dana  Dana D"},
		{"zzz", "No users found"},
	}
	for _, tt := range tests {
		out := h.mustRun("search", tt.query)
		if !strings.Contains(out, tt.want) {
			t.Fatalf("search %q: got %q want %q", tt.query, out, tt.want)
		}
	}
}

func TestCallStartThenEnd(t *testing.T) {
	h := newHarness(t)
	id := h.srv.SeedThread("bob")
	h.srv.AddMessage(id, "bob", "call me")

	out := h.mustRun("call", "start", "--voice")
	if !strings.Contains(out, fmt.Sprintf("Started voice call in thread #%d", id)) {
		t.Fatalf("call start: got %q", out)
	}
	out = h.mustRun("messages")
	if !strings.Contains(out, "Join Voice Call") {
		t.Fatalf("messages after start:\n%s", out)
	}

	out = h.mustRun("call", "end")
	if !strings.HasPrefix(out, "Call ended (#") {
		t.Fatalf("call end: got %q", out)
	}
	out = h.mustRun("messages")
	if !strings.Contains(out, "Call Ended") {
		t.Fatalf("messages after end:\n%s", out)
	}

	_, stderr, err := h.run("call", "end")
	if err == nil || !strings.Contains(stderr, "no active call") {
		t.Fatalf("second end: err %v stderr %q", err, stderr)
	}
}

func TestLikeToggles(t *testing.T) {
	h := newHarness(t)
	h.srv.SetLike(7, false, 1233)

	out := h.mustRun("like", "7")
	if out != "♥ 1,234\n" {
		t.Fatalf("like: got %q", out)
	}
	if got := h.srv.Like(7); !got.Liked || got.Count != 1234 {
		t.Fatalf("server like: got %+v", got)
	}
}

func TestCommentsPostAndReply(t *testing.T) {
	h := newHarness(t)
	root := h.srv.AddComment(9, "erin", "great shot", 0)

	out := h.mustRun("comments", "9", "--post", "thanks", "--reply-to", fmt.Sprint(root))
	if !strings.Contains(out, "Comment posted #") {
		t.Fatalf("comments post: got %q", out)
	}
	if !strings.Contains(out, "2 comments") {
		t.Fatalf("comments count: got %q", out)
	}
	if !strings.Contains(out, "  #") || !strings.Contains(out, "me: thanks  [deletable]") {
		t.Fatalf("reply not nested or not deletable:\n%s", out)
	}
	if strings.Contains(out, "erin: great shot  [deletable]") {
		t.Fatalf("other user's comment marked deletable:\n%s", out)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("config", "set", "poll.search_min_chars", "3")
	if out != "Set poll.search_min_chars\n" {
		t.Fatalf("config set: got %q", out)
	}

	out = h.mustRun("--json", "config", "show")
	var cfg struct {
		Poll struct {
			SearchMinChars int `json:"SearchMinChars"`
		}
		Auth struct {
			Token string
		}
	}
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if cfg.Poll.SearchMinChars != 3 {
		t.Fatalf("search_min_chars: got %d want 3", cfg.Poll.SearchMinChars)
	}
	if cfg.Auth.Token == testToken {
		t.Fatalf("config show printed the raw token")
	}
}

func TestConfigSetRejectsInvalid(t *testing.T) {
	h := newHarness(t)
	tests := [][]string{
		{"config", "set", "poll.messages_interval", "-1s"},
		{"config", "set", "nosection", "x"},
		{"config", "set", "server.nope", "x"},
	}
	for _, args := range tests {
		if _, _, err := h.run(args...); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestUnauthorizedPrintsHint(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedThread("bob")

	_, stderr, err := h.runWithToken("wrong", "threads")
	if err == nil {
		t.Fatalf("threads: expected error")
	}
	if !strings.Contains(stderr, "Hint: Not logged in") {
		t.Fatalf("stderr: got %q", stderr)
	}
}

func TestWatchRunsPasses(t *testing.T) {
	h := newHarness(t)
	id := h.srv.SeedThread("bob")
	h.srv.AddMessage(id, "bob", "ping")

	out := h.mustRun("watch", "--passes", "2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("watch: got %d lines want 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "pass 1 [start]: 1 threads") {
		t.Fatalf("first pass: got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "pass 2 [tick]") || !strings.HasSuffix(lines[1], "1 messages, ok") {
		t.Fatalf("second pass: got %q", lines[1])
	}
}

func TestWatchStopsOnAuthError(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.runWithToken("wrong", "watch", "--passes", "5")
	if err == nil {
		t.Fatalf("watch: expected error")
	}
	if !strings.Contains(stderr, "Hint: Not logged in") {
		t.Fatalf("stderr: got %q", stderr)
	}
}

func TestChatRejectsJSON(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("--json", "chat"); err == nil {
		t.Fatalf("chat --json: expected error")
	}
}
