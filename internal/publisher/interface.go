package publisher

import (
	"context"
	"fmt"
)

// Publisher forwards a finished summary to an external notes service.
type Publisher interface {
	// Publish creates one page and returns its id.
	Publish(ctx context.Context, page Page) (string, error)
}

type Page struct {
	Title    string
	Markdown string
}

// Error reports a failed publish. The local summary it was made from is never touched.
type Error struct {
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("publish to %s failed: %v", e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
