package device

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSelectionRequired is returned when no serial was given and the
	// target device is ambiguous: none or several are attached.
	ErrSelectionRequired = errors.New("no device selected: provide a serial or call selectDevice when zero or multiple devices are attached")

	// ErrTimeout is returned when a bridge operation outlives its deadline.
	ErrTimeout = errors.New("timed out")

	// ErrNotFound is returned when no node matches a query.
	ErrNotFound = errors.New("no matching node found")

	// ErrBoundsUnavailable is returned when a matched node has no usable bounds.
	ErrBoundsUnavailable = errors.New("node bounds missing; cannot tap")

	// ErrQueryRequired is returned when a lookup supplies neither text nor contentDesc.
	ErrQueryRequired = errors.New("either text or contentDesc is required")
)

// BridgeError reports a failed adb invocation.
type BridgeError struct {
	Op     string
	Serial string
	Output string
	Err    error
}

func (e *BridgeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Serial != "" {
		fmt.Fprintf(&b, " on %s", e.Serial)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, ": %s", out)
	}
	return b.String()
}

func (e *BridgeError) Unwrap() error { return e.Err }

// Kind names the error class for logs and tool results.
func Kind(err error) string {
	var be *BridgeError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSelectionRequired):
		return "selection_required"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBoundsUnavailable):
		return "bounds_unavailable"
	case errors.Is(err, ErrQueryRequired):
		return "invalid_query"
	case errors.As(err, &be):
		return "bridge_failure"
	default:
		return "error"
	}
}
