package ai

import "context"

// Client produces a structured summary of an error report.
type Client interface {
	Summarize(ctx context.Context, report string) (string, error)
}
