package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/reconcile"
)

func writeJSON(cmd *cobra.Command, v any) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
}

// parseID accepts "42" or "#42".
func parseID(kind, value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(value), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", kind, value)
	}
	return id, nil
}

// passError turns a failed pass into the error a command reports.
func passError(res reconcile.PassResult) error {
	switch res.Threads.Kind {
	case api.KindNone:
	case api.KindAuth:
		return fmt.Errorf("%s: %w", reconcile.NoticeLogin, api.ErrUnauthorized)
	default:
		return errors.New(reconcile.NoticeInboxFailed)
	}
	if m := res.Messages; m != nil {
		switch m.Kind {
		case api.KindNone, api.KindForbidden:
		case api.KindAuth:
			return fmt.Errorf("%s: %w", reconcile.NoticeLogin, api.ErrUnauthorized)
		default:
			return errors.New("unable to load messages")
		}
	}
	return nil
}

func formatRelative(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func writeThreadList(out io.Writer, view reconcile.ThreadListView) {
	if view.Notice != "" {
		fmt.Fprintln(out, view.Notice)
	}
	for _, row := range view.Rows {
		marker := " "
		if row.Selected {
			marker = "*"
		}
		unread := ""
		if row.Unread > 0 {
			unread = fmt.Sprintf(" (%d unread)", row.Unread)
		}
		fmt.Fprintf(out, "%s #%d %s%s  %s\n", marker, row.ID, row.Name, unread, formatRelative(row.UpdatedAt))
		fmt.Fprintf(out, "    %s\n", row.Preview)
	}
}

func writeMessageList(out io.Writer, header reconcile.Header, view reconcile.MessageListView) {
	if header.ThreadID != 0 {
		fmt.Fprintf(out, "%s  %s\n", header.Title, header.Status)
	}
	if view.Notice != "" {
		fmt.Fprintln(out, view.Notice)
	}
	for _, entry := range view.Entries {
		msg := entry.Message
		who := msg.Username
		if msg.IsMe {
			who = "you"
		}
		text := msg.Text
		if inv := entry.Invite; inv != nil {
			text = fmt.Sprintf("[%s] %s", inv.Title(), inv.Label())
		}
		fmt.Fprintf(out, "#%d %s (%s): %s\n", msg.ID, who, formatRelative(msg.CreatedAt), text)
		if len(entry.Badges) > 0 {
			pills := make([]string, 0, len(entry.Badges))
			for _, badge := range entry.Badges {
				pill := fmt.Sprintf("%s %d", badge.Emoji, badge.Count)
				if badge.ViewerReacted {
					pill += "*"
				}
				pills = append(pills, pill)
			}
			fmt.Fprintf(out, "    %s\n", strings.Join(pills, "  "))
		}
	}
}
