package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/api"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	msg := err.Error()
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		msg = api.Message(err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", msg)

	if api.Classify(err) == api.KindAuth {
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: Not logged in. Try: auradm config set auth.token <token>")
	}

	return reportedError{err}
}

// reportedError marks an error already printed to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// IsReported reports whether err was already printed by a command.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
