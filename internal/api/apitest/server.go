// Package apitest provides an in-memory fake of the social backend's REST
// API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adamavenir/auradm/internal/types"
)

const basePath = "/api"

type thread struct {
	id        int64
	a, b      string
	updatedAt time.Time
	unread    int
	messages  []*message
}

func (t *thread) has(username string) bool { return t.a == username || t.b == username }

func (t *thread) other(username string) string {
	if t.a == username {
		return t.b
	}
	return t.a
}

type message struct {
	id        int64
	from      string
	text      string
	createdAt time.Time
	emojis    []string
	reactors  map[string][]string
}

type comment struct {
	id        int64
	username  string
	text      string
	createdAt time.Time
	replies   []*comment
}

type user struct {
	summary types.SearchUser
	online  bool
}

// Server is a fake backend. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	viewer    string
	token     string
	users     map[string]*user
	threads   []*thread
	nextID    int64
	now       time.Time
	forbidden map[int64]bool
	failures  map[string]int
	hits      map[string]int
	likes     map[int64]types.LikeState
	comments  map[int64][]*comment
}

// New starts a fake backend whose requests act as viewer.
func New(tb testing.TB, viewer string) *Server {
	tb.Helper()
	s := &Server{
		viewer:    viewer,
		users:     make(map[string]*user),
		now:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		forbidden: make(map[int64]bool),
		failures:  make(map[string]int),
		hits:      make(map[string]int),
		likes:     make(map[int64]types.LikeState),
		comments:  make(map[int64][]*comment),
	}
	s.AddUser(viewer, viewer, true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+basePath+"/dm/threads/{$}", s.listThreads)
	mux.HandleFunc("POST "+basePath+"/dm/threads/{$}", s.createThread)
	mux.HandleFunc("GET "+basePath+"/dm/threads/{id}/messages/{$}", s.listMessages)
	mux.HandleFunc("POST "+basePath+"/dm/threads/{id}/messages/{$}", s.sendMessage)
	mux.HandleFunc("DELETE "+basePath+"/dm/messages/{id}/{$}", s.deleteMessage)
	mux.HandleFunc("POST "+basePath+"/dm/messages/{id}/react/{$}", s.react)
	mux.HandleFunc("DELETE "+basePath+"/dm/messages/{id}/react/{$}", s.react)
	mux.HandleFunc("GET "+basePath+"/search/users/{$}", s.searchUsers)
	mux.HandleFunc("GET "+basePath+"/photos/{id}/like/{$}", s.like)
	mux.HandleFunc("POST "+basePath+"/photos/{id}/like/{$}", s.like)
	mux.HandleFunc("GET "+basePath+"/photos/{id}/comments/{$}", s.listComments)
	mux.HandleFunc("POST "+basePath+"/photos/{id}/comments/{$}", s.postComment)
	mux.HandleFunc("DELETE "+basePath+"/comments/{id}/{$}", s.deleteComment)

	s.Server = httptest.NewServer(s.intercept(mux))
	tb.Cleanup(s.Close)
	return s
}

// BaseURL returns the API base URL to hand to api.NewClient.
func (s *Server) BaseURL() string {
	return s.Server.URL + basePath
}

// RequireToken makes every request without this bearer token fail with 401.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// AddUser registers a user that can be searched for and messaged.
func (s *Server) AddUser(username, displayName string, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = &user{
		summary: types.SearchUser{Username: username, DisplayName: displayName},
		online:  online,
	}
}

// SeedThread creates (or returns) the viewer's thread with other.
func (s *Server) SeedThread(other string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[other]; !ok {
		s.users[other] = &user{summary: types.SearchUser{Username: other, DisplayName: other}}
	}
	return s.threadFor(s.viewer, other).id
}

// AddMessage appends a message from a user to a thread.
func (s *Server) AddMessage(threadID int64, from, text string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findThread(threadID)
	if t == nil {
		panic(fmt.Sprintf("apitest: no thread %d", threadID))
	}
	return s.appendMessage(t, from, text).id
}

// React adds username's emoji to a message.
func (s *Server) React(messageID int64, username, emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, m := s.findMessage(messageID); m != nil {
		addReaction(m, username, emoji)
	}
}

// RemoveThread deletes a thread so it disappears from the list.
func (s *Server) RemoveThread(threadID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.threads {
		if t.id == threadID {
			s.threads = append(s.threads[:i], s.threads[i+1:]...)
			return
		}
	}
}

// Forbid makes the thread's message endpoints answer 403.
func (s *Server) Forbid(threadID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forbidden[threadID] = true
}

// Fail makes "METHOD /path" (path relative to the API base) answer status
// until ClearFailures. Status 0 closes the connection instead.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// ClearFailures removes every injected failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// Hits returns how many times "METHOD /path" was requested.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// ThreadCount returns the number of stored threads.
func (s *Server) ThreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}

// SetLike seeds the like state of a photo.
func (s *Server) SetLike(photoID int64, liked bool, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes[photoID] = types.LikeState{Liked: liked, Count: count}
}

// Like returns the stored like state of a photo.
func (s *Server) Like(photoID int64) types.LikeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes[photoID]
}

// AddComment seeds a comment, or a reply when parentID is non-zero.
func (s *Server) AddComment(photoID int64, username, text string, parentID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.insertComment(photoID, username, text, parentID)
	if err != nil {
		panic(err)
	}
	return c.id
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, basePath)
		s.mu.Lock()
		s.hits[key]++
		status, failing := s.failures[key]
		token := s.token
		s.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		if failing {
			if status == 0 {
				if hj, ok := w.(http.Hijacker); ok {
					if conn, _, err := hj.Hijack(); err == nil {
						_ = conn.Close()
						return
					}
				}
				status = http.StatusBadGateway
			}
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *Server) nextIdentifier() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) threadFor(a, b string) *thread {
	for _, t := range s.threads {
		if t.has(a) && t.has(b) {
			return t
		}
	}
	t := &thread{id: s.nextIdentifier(), a: a, b: b, updatedAt: s.tick()}
	s.threads = append(s.threads, t)
	return t
}

func (s *Server) findThread(id int64) *thread {
	for _, t := range s.threads {
		if t.id == id {
			return t
		}
	}
	return nil
}

func (s *Server) findMessage(id int64) (*thread, *message) {
	for _, t := range s.threads {
		for _, m := range t.messages {
			if m.id == id {
				return t, m
			}
		}
	}
	return nil, nil
}

func (s *Server) appendMessage(t *thread, from, text string) *message {
	m := &message{id: s.nextIdentifier(), from: from, text: text, createdAt: s.tick(), reactors: make(map[string][]string)}
	t.messages = append(t.messages, m)
	t.updatedAt = m.createdAt
	if from != s.viewer {
		t.unread++
	}
	return m
}

func addReaction(m *message, username, emoji string) {
	for _, u := range m.reactors[emoji] {
		if u == username {
			return
		}
	}
	if len(m.reactors[emoji]) == 0 {
		m.emojis = append(m.emojis, emoji)
	}
	m.reactors[emoji] = append(m.reactors[emoji], username)
}

func removeReaction(m *message, username, emoji string) {
	users := m.reactors[emoji]
	for i, u := range users {
		if u == username {
			m.reactors[emoji] = append(users[:i], users[i+1:]...)
			break
		}
	}
	if len(m.reactors[emoji]) > 0 {
		return
	}
	delete(m.reactors, emoji)
	for i, e := range m.emojis {
		if e == emoji {
			m.emojis = append(m.emojis[:i], m.emojis[i+1:]...)
			return
		}
	}
}

func (s *Server) summary(username string) *types.UserSummary {
	u, ok := s.users[username]
	if !ok {
		return nil
	}
	return &types.UserSummary{
		Username:    username,
		DisplayName: u.summary.DisplayName,
		IsOnline:    u.online,
		ProfileURL:  "/u/" + username + "/",
	}
}

func (s *Server) threadJSON(t *thread) types.Thread {
	out := types.Thread{
		ID:          t.id,
		OtherUser:   s.summary(t.other(s.viewer)),
		UpdatedAt:   t.updatedAt,
		UnreadCount: t.unread,
	}
	if n := len(t.messages); n > 0 {
		last := t.messages[n-1]
		out.LastMessage = &types.MessagePreview{Text: last.text, CreatedAt: last.createdAt}
	}
	return out
}

func (s *Server) messageJSON(t *thread, m *message) types.Message {
	out := types.Message{
		ID:        m.id,
		ThreadID:  t.id,
		Text:      m.text,
		CreatedAt: m.createdAt,
		IsMe:      m.from == s.viewer,
		Username:  m.from,
		Reactions: []types.Reaction{},
	}
	for _, emoji := range m.emojis {
		r := types.Reaction{Emoji: emoji, Count: len(m.reactors[emoji])}
		for _, u := range m.reactors[emoji] {
			r.Users = append(r.Users, types.ReactionUser{Username: u, IsMe: u == s.viewer})
		}
		out.Reactions = append(out.Reactions, r)
	}
	return out
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []*thread
	for _, t := range s.threads {
		if t.has(s.viewer) {
			mine = append(mine, t)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		if mine[i].updatedAt.Equal(mine[j].updatedAt) {
			return mine[i].id > mine[j].id
		}
		return mine[i].updatedAt.After(mine[j].updatedAt)
	})
	out := make([]types.Thread, 0, len(mine))
	for _, t := range mine {
		out = append(out, s.threadJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.Username]; !ok {
		writeError(w, http.StatusNotFound, "User not found.")
		return
	}
	if req.Username == s.viewer {
		writeError(w, http.StatusBadRequest, "Cannot message yourself.")
		return
	}
	writeJSON(w, http.StatusCreated, s.threadJSON(s.threadFor(s.viewer, req.Username)))
}

func (s *Server) threadFromPath(w http.ResponseWriter, r *http.Request) *thread {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return nil
	}
	t := s.findThread(id)
	if t == nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return nil
	}
	if s.forbidden[id] || !t.has(s.viewer) {
		writeError(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return nil
	}
	return t
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.threadFromPath(w, r)
	if t == nil {
		return
	}
	t.unread = 0
	msgs := t.messages
	if len(msgs) > 50 {
		msgs = msgs[len(msgs)-50:]
	}
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, s.messageJSON(t, m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Message text required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.threadFromPath(w, r)
	if t == nil {
		return
	}
	m := s.appendMessage(t, s.viewer, req.Text)
	writeJSON(w, http.StatusCreated, s.messageJSON(t, m))
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, m := s.findMessage(id)
	if m == nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	if m.from != s.viewer {
		writeError(w, http.StatusForbidden, "You can only delete your own messages.")
		return
	}
	for i, existing := range t.messages {
		if existing.id == id {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) react(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Emoji == "" {
		writeError(w, http.StatusBadRequest, "emoji required")
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, m := s.findMessage(id)
	if m == nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	if r.Method == http.MethodDelete {
		removeReaction(m, s.viewer, req.Emoji)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	addReaction(m, s.viewer, req.Emoji)
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.SearchUser{}
	for name, u := range s.users {
		if name == s.viewer || q == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(u.summary.DisplayName), q) {
			out = append(out, u.summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.likes[id]
	if r.Method == http.MethodPost {
		state.Liked = !state.Liked
		if state.Liked {
			state.Count++
		} else if state.Count > 0 {
			state.Count--
		}
		s.likes[id] = state
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) commentJSON(c *comment) types.Comment {
	out := types.Comment{ID: c.id, Username: c.username, Text: c.text, CreatedAt: c.createdAt}
	for _, reply := range c.replies {
		out.Replies = append(out.Replies, s.commentJSON(reply))
	}
	return out
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Comment{}
	for _, c := range s.comments[id] {
		out = append(out, s.commentJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) postComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		ParentID *int64 `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Comment text required.")
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var parent int64
	if req.ParentID != nil {
		parent = *req.ParentID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.insertComment(id, s.viewer, req.Text, parent)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.commentJSON(c))
}

func (s *Server) insertComment(photoID int64, username, text string, parentID int64) (*comment, error) {
	c := &comment{id: s.nextIdentifier(), username: username, text: text, createdAt: s.tick()}
	if parentID == 0 {
		s.comments[photoID] = append(s.comments[photoID], c)
		return c, nil
	}
	parent := findComment(s.comments[photoID], parentID)
	if parent == nil {
		return nil, fmt.Errorf("parent comment %d not found", parentID)
	}
	parent.replies = append(parent.replies, c)
	return c, nil
}

func findComment(list []*comment, id int64) *comment {
	for _, c := range list {
		if c.id == id {
			return c
		}
		if found := findComment(c.replies, id); found != nil {
			return found
		}
	}
	return nil
}

func removeComment(list []*comment, id int64) ([]*comment, *comment) {
	for i, c := range list {
		if c.id == id {
			return append(list[:i], list[i+1:]...), c
		}
		var removed *comment
		if c.replies, removed = removeComment(c.replies, id); removed != nil {
			return list, removed
		}
	}
	return list, nil
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for photoID, list := range s.comments {
		c := findComment(list, id)
		if c == nil {
			continue
		}
		if c.username != s.viewer {
			writeError(w, http.StatusForbidden, "You might not have permission.")
			return
		}
		s.comments[photoID], _ = removeComment(list, id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeError(w, http.StatusNotFound, "Not found.")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
