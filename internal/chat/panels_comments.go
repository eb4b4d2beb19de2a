package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/comments"
	"github.com/adamavenir/auradm/internal/reactions"
	"github.com/adamavenir/auradm/internal/types"
)

const noPermission = "You might not have permission."

// commentsTickMsg fires on the comment panel cadence.
type commentsTickMsg time.Time

type commentsMsg struct {
	seq  int
	list []types.Comment
	err  error
}

type likeStateMsg struct {
	photoID int64
	state   types.LikeState
	err     error
}

type likeResultMsg struct {
	pending reactions.Pending
	state   types.LikeState
	err     error
}

type commentActionMsg struct {
	action string
	err    error
}

// openPanel shows the comments of photoID and starts its poll loop.
func (m *Model) openPanel(photoID int64, owner string) tea.Cmd {
	if m.panel != nil && m.panel.IsOpen() {
		m.panel.Close()
	}
	m.panel = comments.NewPanel(photoID, owner)
	m.like = reactions.NewLike(types.LikeState{}, m.anonymous())
	m.commentBox.Reset()
	m.commentsView.SetContent("")
	m.commentsView.GotoTop()
	m.resize()
	return tea.Batch(m.openPanelCmds()...)
}

func (m *Model) openPanelCmds() []tea.Cmd {
	cmds := []tea.Cmd{m.fetchCommentsCmd(m.panel.BeginFetch()), m.fetchLikeCmd()}
	if !m.commentsPolling {
		m.commentsPolling = true
		cmds = append(cmds, m.commentsTick())
	}
	return cmds
}

func (m *Model) closePanel() {
	if m.panel == nil {
		return
	}
	m.panel.Close()
	m.commentBox.Reset()
	if m.focus == focusComments {
		m.setFocus(focusComposer)
	}
	m.resize()
}

func (m *Model) commentsTick() tea.Cmd {
	return tea.Every(m.commentsInterval, func(t time.Time) tea.Msg {
		return commentsTickMsg(t)
	})
}

func (m *Model) fetchCommentsCmd(seq int) tea.Cmd {
	ctx, backend, photoID := m.ctx, m.backend, m.panel.PhotoID
	return func() tea.Msg {
		list, err := backend.ListComments(ctx, photoID)
		return commentsMsg{seq: seq, list: list, err: err}
	}
}

func (m *Model) fetchLikeCmd() tea.Cmd {
	ctx, backend, photoID := m.ctx, m.backend, m.panel.PhotoID
	return func() tea.Msg {
		state, err := backend.GetLike(ctx, photoID)
		return likeStateMsg{photoID: photoID, state: state, err: err}
	}
}

// handleCommentsTick polls while the panel is open. Ticks keep their
// cadence while the viewer composes, but no fetch is made.
func (m *Model) handleCommentsTick() (tea.Model, tea.Cmd) {
	if m.panel == nil || !m.panel.IsOpen() {
		m.commentsPolling = false
		return m, nil
	}
	seq, ok := m.panel.BeginPoll()
	if !ok {
		return m, m.commentsTick()
	}
	return m, tea.Batch(m.commentsTick(), m.fetchCommentsCmd(seq))
}

func (m *Model) handleCommentsMsg(msg commentsMsg) (tea.Model, tea.Cmd) {
	if m.panel == nil {
		return m, nil
	}
	if msg.err != nil {
		if m.panel.IsOpen() {
			m.status = "Could not load comments: " + api.Message(msg.err)
		}
		return m, nil
	}
	rendered := m.panel.Apply(msg.seq, msg.list, m.commentRenderOptions())
	if rendered {
		m.commentsView.SetContent(m.panel.Markup())
	}
	if m.renders != nil {
		m.renders.ObserveCommentRender(rendered)
	}
	return m, nil
}

func (m *Model) commentRenderOptions() comments.RenderOptions {
	viewer := m.viewer
	if m.anonymous() {
		viewer = ""
	}
	return comments.RenderOptions{
		Viewer: viewer,
		Owner:  m.panel.Owner,
		Width:  m.commentsWidth() - 2,
		Mark:   m.zoneManager.Mark,
	}
}

func (m *Model) handleLikeStateMsg(msg likeStateMsg) (tea.Model, tea.Cmd) {
	if m.panel == nil || m.panel.PhotoID != msg.photoID || m.like == nil {
		return m, nil
	}
	if msg.err != nil {
		m.status = "Could not load likes: " + api.Message(msg.err)
		return m, nil
	}
	m.like.Refresh(msg.state)
	return m, nil
}

// toggleLike flips the like immediately and sends the request; the
// completion adopts the server state or rolls back. Clicks while a toggle
// is in flight are ignored.
func (m *Model) toggleLike() tea.Cmd {
	if m.panel == nil || !m.panel.IsOpen() || m.like == nil {
		return nil
	}
	pending, err := m.like.Begin()
	if err != nil {
		if errors.Is(err, reactions.ErrAnonymous) {
			m.status = "Log in to like photos."
		}
		return nil
	}
	ctx, backend, photoID := m.ctx, m.backend, m.panel.PhotoID
	return func() tea.Msg {
		state, err := backend.ToggleLike(ctx, photoID)
		return likeResultMsg{pending: pending, state: state, err: err}
	}
}

func (m *Model) handleLikeResultMsg(msg likeResultMsg) (tea.Model, tea.Cmd) {
	if m.like == nil {
		return m, nil
	}
	m.like.Resolve(msg.pending, msg.state, msg.err)
	if msg.err != nil {
		return m, m.toast("Could not update like: " + api.Message(msg.err))
	}
	return m, nil
}

func (m *Model) handleCommentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if _, replying := m.panel.Replying(); replying {
			m.panel.CancelReply()
			return m, nil
		}
		m.setFocus(focusComposer)
		return m, nil
	case "enter":
		return m, m.postComment()
	}
	var cmd tea.Cmd
	m.commentBox, cmd = m.commentBox.Update(msg)
	m.panel.SetDraft(m.commentBox.Value())
	return m, cmd
}

func (m *Model) postComment() tea.Cmd {
	text := strings.TrimSpace(m.commentBox.Value())
	if text == "" {
		m.status = "Comment is empty."
		return nil
	}
	if m.anonymous() {
		m.status = "Log in to comment."
		return nil
	}
	ctx, backend, photoID, parent := m.ctx, m.backend, m.panel.PhotoID, m.panel.ParentID()
	return func() tea.Msg {
		_, err := backend.PostComment(ctx, photoID, text, parent)
		return commentActionMsg{action: "post", err: err}
	}
}

func (m *Model) startReply(commentID int64) {
	if m.panel == nil || m.anonymous() {
		return
	}
	target, ok := comments.Find(m.panel.Comments(), commentID)
	if !ok {
		return
	}
	m.panel.StartReply(comments.ReplyTarget{ID: target.ID, Username: target.Username})
	m.setFocus(focusComments)
}

func (m *Model) deleteComment(commentID int64) tea.Cmd {
	if m.panel == nil {
		return nil
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		err := backend.DeleteComment(ctx, commentID)
		return commentActionMsg{action: "delete", err: err}
	}
}

func (m *Model) handleCommentActionMsg(msg commentActionMsg) (tea.Model, tea.Cmd) {
	if m.panel == nil || !m.panel.IsOpen() {
		return m, nil
	}
	if msg.err != nil {
		text := api.Message(msg.err)
		if msg.action == "delete" {
			text = "Could not delete comment. " + noPermission
			if api.Classify(msg.err) != api.KindForbidden {
				text = "Could not delete comment: " + api.Message(msg.err)
			}
		} else {
			text = "Could not post comment: " + text
		}
		return m, m.toast(text)
	}
	if msg.action == "post" {
		m.panel.Posted()
		m.commentBox.Reset()
	}
	return m, m.fetchCommentsCmd(m.panel.BeginFetch())
}

func (m *Model) renderCommentsPanel() string {
	width := m.commentsWidth()
	if width == 0 {
		return ""
	}
	inner := width - 2
	state := m.like.State()
	heart := "♡"
	if state.Liked {
		heart = "♥"
	}
	likeButton := m.zoneManager.Mark("like", accentStyle.Render(fmt.Sprintf("%s %s", heart, humanize.Comma(int64(state.Count)))))
	closeButton := m.zoneManager.Mark("comments-close", dimStyle.Render("✕"))
	title := nameStyle.Render(fmt.Sprintf("Photo #%d", m.panel.PhotoID))
	gap := inner - lipgloss.Width(title) - lipgloss.Width(likeButton) - lipgloss.Width(closeButton) - 2
	if gap < 1 {
		gap = 1
	}
	header := title + strings.Repeat(" ", gap) + likeButton + "  " + closeButton

	body := m.commentsView.View()
	if m.panel.Markup() == "" {
		body = noticeStyle.Render("Loading comments…")
	}
	reply := ""
	if target, ok := m.panel.Replying(); ok {
		reply = dimStyle.Render(fmt.Sprintf("Replying to @%s (esc to cancel)", target.Username))
	}
	sections := []string{header, "", body, "", reply}
	sections = append(sections, m.zoneManager.Mark("comment-box", m.commentBox.View()))

	style := lipgloss.NewStyle().Width(inner).PaddingLeft(1)
	if m.height > 0 {
		style = style.Height(m.height).MaxHeight(m.height)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
