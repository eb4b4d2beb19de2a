package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/adamavenir/auradm/internal/types"
)

// SearchUsers looks up users matching q.
func (c *Client) SearchUsers(ctx context.Context, q string) ([]types.SearchUser, error) {
	query := url.Values{}
	query.Set("q", q)
	var users []types.SearchUser
	if err := c.doJSON(ctx, http.MethodGet, "/search/users/", query, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetLike fetches the viewer's like state for a photo.
func (c *Client) GetLike(ctx context.Context, photoID int64) (types.LikeState, error) {
	var state types.LikeState
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/photos/%d/like/", photoID), nil, nil, &state); err != nil {
		return types.LikeState{}, err
	}
	return state, nil
}

// ToggleLike flips the viewer's like on a photo and returns the server's state.
func (c *Client) ToggleLike(ctx context.Context, photoID int64) (types.LikeState, error) {
	var state types.LikeState
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/photos/%d/like/", photoID), nil, nil, &state); err != nil {
		return types.LikeState{}, err
	}
	return state, nil
}

// ListComments fetches a photo's top-level comments with nested replies.
func (c *Client) ListComments(ctx context.Context, photoID int64) ([]types.Comment, error) {
	var comments []types.Comment
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/photos/%d/comments/", photoID), nil, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

type commentRequest struct {
	Text     string `json:"text"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// PostComment adds a comment, or a reply when parentID is non-nil.
func (c *Client) PostComment(ctx context.Context, photoID int64, text string, parentID *int64) (types.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Comment{}, ErrEmptyText
	}
	var comment types.Comment
	req := commentRequest{Text: text, ParentID: parentID}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/photos/%d/comments/", photoID), nil, req, &comment); err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d/", commentID), nil, nil, nil)
}
