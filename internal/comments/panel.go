package comments

import (
	"strings"

	"github.com/adamavenir/auradm/internal/types"
)

// ReplyTarget is the comment being answered.
type ReplyTarget struct {
	ID       int64
	Username string
}

// Panel is the comment section of one open photo. It owns the composing
// state that suppresses polling and the last markup put on screen.
type Panel struct {
	PhotoID int64
	Owner   string

	open     bool
	seq      int
	markup   string
	comments []types.Comment
	replying *ReplyTarget
	draft    string
}

// NewPanel opens the comment panel of photoID on a profile owned by owner.
func NewPanel(photoID int64, owner string) *Panel {
	return &Panel{PhotoID: photoID, Owner: owner, open: true}
}

// IsOpen reports whether the panel is showing.
func (p *Panel) IsOpen() bool { return p.open }

// Close hides the panel; in-flight fetches are discarded on arrival.
func (p *Panel) Close() {
	p.open = false
	p.seq++
}

// Markup is what is currently on screen.
func (p *Panel) Markup() string { return p.markup }

// Comments is the last applied tree.
func (p *Panel) Comments() []types.Comment { return p.comments }

// SetDraft records the composer's unsent text.
func (p *Panel) SetDraft(text string) { p.draft = text }

// Draft returns the composer's unsent text.
func (p *Panel) Draft() string { return p.draft }

// StartReply enters reply mode.
func (p *Panel) StartReply(target ReplyTarget) { p.replying = &target }

// CancelReply leaves reply mode.
func (p *Panel) CancelReply() { p.replying = nil }

// Replying returns the reply target, if any.
func (p *Panel) Replying() (ReplyTarget, bool) {
	if p.replying == nil {
		return ReplyTarget{}, false
	}
	return *p.replying, true
}

// ParentID is the parent_id to post with, nil for a top-level comment.
func (p *Panel) ParentID() *int64 {
	if p.replying == nil {
		return nil
	}
	id := p.replying.ID
	return &id
}

// Composing reports whether the viewer is replying or has unsent input.
func (p *Panel) Composing() bool {
	return p.replying != nil || strings.TrimSpace(p.draft) != ""
}

// BeginPoll starts a scheduled fetch. It returns false when the panel is
// closed or the viewer is composing, in which case no request is made.
func (p *Panel) BeginPoll() (int, bool) {
	if !p.open || p.Composing() {
		return 0, false
	}
	return p.BeginFetch(), true
}

// BeginFetch starts an explicit fetch (panel open, after posting or
// deleting) regardless of composing state.
func (p *Panel) BeginFetch() int {
	p.seq++
	return p.seq
}

// Apply installs a fetched tree. It returns false, leaving the screen
// untouched, when the fetch is stale or the markup is byte-identical to what
// is displayed.
func (p *Panel) Apply(seq int, list []types.Comment, opts RenderOptions) bool {
	if !p.open || seq != p.seq {
		return false
	}
	markup := Render(list, opts)
	if markup == p.markup {
		return false
	}
	p.markup = markup
	p.comments = list
	return true
}

// Posted resets composing state after a successful post.
func (p *Panel) Posted() {
	p.draft = ""
	p.replying = nil
}
