// Package devicetest provides a scripted device.Bridge for tests.
package devicetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hamen/android-mcp/internal/device"
	"github.com/hamen/android-mcp/internal/model"
)

// Call records one bridge invocation.
type Call struct {
	Method  string
	Serial  string
	Command string
}

// Bridge is a device.Bridge whose answers are set up front. Shell replies
// are looked up by the longest registered prefix of the command.
type Bridge struct {
	mu     sync.Mutex
	calls  []Call
	active map[string]int
	peak   map[string]int

	Devices      []device.Entry
	DevicesError error

	ShellOutputs map[string][]byte
	ShellErrors  map[string]error

	ScreencapResult []byte
	ScreencapError  error

	StartActivityError error

	// SerialErrors fails every call addressed to a serial.
	SerialErrors map[string]error

	// Delay makes every call block for this long, or until ctx is done.
	Delay time.Duration
}

// New returns a Bridge reporting the given serials as attached devices.
func New(serials ...string) *Bridge {
	b := &Bridge{
		ShellOutputs: make(map[string][]byte),
		ShellErrors:  make(map[string]error),
		SerialErrors: make(map[string]error),
		active:       make(map[string]int),
		peak:         make(map[string]int),
	}
	for _, s := range serials {
		b.Devices = append(b.Devices, device.Entry{ID: s, Type: "device"})
	}
	return b
}

// SetDump makes ui dumps return xml.
func (b *Bridge) SetDump(xml string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ShellOutputs["uiautomator dump"] = []byte(xml)
}

// SetShell registers a reply for commands starting with prefix.
func (b *Bridge) SetShell(prefix, out string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ShellOutputs[prefix] = []byte(out)
	if err != nil {
		b.ShellErrors[prefix] = err
	}
}

// Calls returns a copy of every recorded call.
func (b *Bridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Commands returns the shell commands sent to serial, in order.
func (b *Bridge) Commands(serial string) []string {
	var out []string
	for _, c := range b.Calls() {
		if c.Method == "shell" && c.Serial == serial {
			out = append(out, c.Command)
		}
	}
	return out
}

// Taps returns every "input tap" issued, in order.
func (b *Bridge) Taps() []model.Point {
	var out []model.Point
	for _, c := range b.Calls() {
		var p model.Point
		if c.Method != "shell" {
			continue
		}
		if _, err := fmt.Sscanf(c.Command, "input tap %d %d", &p.X, &p.Y); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// Peak returns the largest number of calls seen in flight at once for serial.
func (b *Bridge) Peak(serial string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peak[serial]
}

func (b *Bridge) record(ctx context.Context, c Call) error {
	b.mu.Lock()
	b.calls = append(b.calls, c)
	b.active[c.Serial]++
	if b.active[c.Serial] > b.peak[c.Serial] {
		b.peak[c.Serial] = b.active[c.Serial]
	}
	delay := b.Delay
	serialErr := b.SerialErrors[c.Serial]
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.active[c.Serial]--
		b.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return serialErr
}

func (b *Bridge) ListDevices(ctx context.Context) ([]device.Entry, error) {
	if err := b.record(ctx, Call{Method: "devices"}); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]device.Entry(nil), b.Devices...), b.DevicesError
}

func (b *Bridge) Shell(ctx context.Context, serial, command string) ([]byte, error) {
	if err := b.record(ctx, Call{Method: "shell", Serial: serial, Command: command}); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	best := ""
	found := false
	for prefix := range b.ShellOutputs {
		if strings.HasPrefix(command, prefix) && (!found || len(prefix) > len(best)) {
			best, found = prefix, true
		}
	}
	for prefix := range b.ShellErrors {
		if strings.HasPrefix(command, prefix) && (!found || len(prefix) > len(best)) {
			best, found = prefix, true
		}
	}
	if !found {
		return nil, nil
	}
	return b.ShellOutputs[best], b.ShellErrors[best]
}

func (b *Bridge) Screencap(ctx context.Context, serial string) ([]byte, error) {
	if err := b.record(ctx, Call{Method: "screencap", Serial: serial}); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ScreencapResult, b.ScreencapError
}

func (b *Bridge) StartActivity(ctx context.Context, serial string, opts device.ActivityOptions) error {
	cmd := opts.Component
	if opts.Wait {
		cmd = "-W " + cmd
	}
	if err := b.record(ctx, Call{Method: "start", Serial: serial, Command: cmd}); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.StartActivityError
}

var _ device.Bridge = (*Bridge)(nil)
