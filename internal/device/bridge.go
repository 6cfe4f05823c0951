package device

import "context"

// Entry is one line of the attached-device listing.
type Entry struct {
	ID   string `yaml:"id"   json:"id"`
	Type string `yaml:"type" json:"type"`
}

// ActivityOptions describes an activity launch.
type ActivityOptions struct {
	Component string
	Action    string
	Data      string
	Wait      bool
}

// Bridge is the device transport. Implementations must return promptly
// once ctx is done and must not retry.
type Bridge interface {
	ListDevices(ctx context.Context) ([]Entry, error)
	Shell(ctx context.Context, serial, command string) ([]byte, error)
	Screencap(ctx context.Context, serial string) ([]byte, error)
	StartActivity(ctx context.Context, serial string, opts ActivityOptions) error
}
