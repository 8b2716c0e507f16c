// Package media resolves playback metadata for uploaded files.
package media

import (
	"context"
	"errors"
)

// Prober reports the duration, in seconds, of a local media file.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

var (
	// ErrProberUnavailable indicates the duration prober is not configured.
	ErrProberUnavailable = errors.New("media duration prober unavailable")
)
