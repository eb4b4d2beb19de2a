package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/adamavenir/auradm/internal/types"
)

// ListThreads fetches the viewer's threads, most recently active first.
func (c *Client) ListThreads(ctx context.Context) ([]types.Thread, error) {
	var threads []types.Thread
	if err := c.doJSON(ctx, http.MethodGet, "/dm/threads/", nil, nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

type createThreadRequest struct {
	Username string `json:"username"`
}

// CreateOrGetThread returns the thread with username, creating it on first
// contact. Calling it again for the same user returns the same thread.
func (c *Client) CreateOrGetThread(ctx context.Context, username string) (types.Thread, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return types.Thread{}, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	var thread types.Thread
	if err := c.doJSON(ctx, http.MethodPost, "/dm/threads/", nil, createThreadRequest{Username: username}, &thread); err != nil {
		return types.Thread{}, err
	}
	return thread, nil
}

// ListMessages fetches a thread's messages, oldest first.
func (c *Client) ListMessages(ctx context.Context, threadID int64) ([]types.Message, error) {
	var messages []types.Message
	path := fmt.Sprintf("/dm/threads/%d/messages/", threadID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

type textRequest struct {
	Text string `json:"text"`
}

// SendMessage posts text to a thread. Blank text fails locally with ErrEmptyText.
func (c *Client) SendMessage(ctx context.Context, threadID int64, text string) (types.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Message{}, ErrEmptyText
	}
	var msg types.Message
	path := fmt.Sprintf("/dm/threads/%d/messages/", threadID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, textRequest{Text: text}, &msg); err != nil {
		return types.Message{}, err
	}
	return msg, nil
}

// DeleteMessage hard-deletes one of the viewer's messages.
func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/dm/messages/%d/", messageID), nil, nil, nil)
}

type reactRequest struct {
	Emoji string `json:"emoji"`
}

// AddReaction reacts to a message with emoji.
func (c *Client) AddReaction(ctx context.Context, messageID int64, emoji string) error {
	return c.react(ctx, http.MethodPost, messageID, emoji)
}

// RemoveReaction withdraws the viewer's emoji reaction from a message.
func (c *Client) RemoveReaction(ctx context.Context, messageID int64, emoji string) error {
	return c.react(ctx, http.MethodDelete, messageID, emoji)
}

func (c *Client) react(ctx context.Context, method string, messageID int64, emoji string) error {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return fmt.Errorf("%w: emoji required", ErrInvalidInput)
	}
	path := fmt.Sprintf("/dm/messages/%d/react/", messageID)
	return c.doJSON(ctx, method, path, nil, reactRequest{Emoji: emoji}, nil)
}
