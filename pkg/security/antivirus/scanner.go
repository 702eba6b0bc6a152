// Package antivirus checks uploaded CVs for malware before they are stored.
package antivirus

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the scanner cannot be reached. Uploads are
// rejected in that case.
var ErrUnavailable = errors.New("antivirus: scanner unavailable")

// Result is the verdict for one file.
type Result struct {
	Infected bool
	// Threat is the signature name reported by the scanner, if any.
	Threat  string
	Scanner string
}

// Scanner inspects file content.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) (Result, error)
	Name() string
	Ping(ctx context.Context) error
}

// NoOpScanner reports every file as clean.
type NoOpScanner struct{}

var _ Scanner = NoOpScanner{}

func (NoOpScanner) Scan(context.Context, string, []byte) (Result, error) {
	return Result{Scanner: "noop"}, nil
}

func (NoOpScanner) Name() string { return "noop" }

func (NoOpScanner) Ping(context.Context) error { return nil }
