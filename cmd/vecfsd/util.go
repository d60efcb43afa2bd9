package main

import (
	"errors"
	"fmt"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
)

// describeDispatchError renders a dispatch.Error with its kind, so an
// operator driving the CLI directly sees the same classification an
// MCP or HTTP caller would.
func describeDispatchError(err error) error {
	var dErr *dispatch.Error
	if errors.As(err, &dErr) {
		return fmt.Errorf("%s: %s", dErr.Kind, dErr.Msg)
	}
	return err
}
