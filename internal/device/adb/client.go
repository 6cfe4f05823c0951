// Package adb implements device.Bridge by running the adb binary.
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hamen/android-mcp/internal/device"
)

// waitDelay bounds how long a killed adb may hold its output pipes open.
const waitDelay = 2 * time.Second

var serialPattern = regexp.MustCompile(`^[a-zA-Z0-9._:\-]+$`)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Client runs adb commands. The zero value is not usable; call New.
type Client struct {
	path string
	log  zerolog.Logger
}

// New returns a Client running the adb binary at path. An empty path is
// resolved with ResolvePath.
func New(path string, log zerolog.Logger) *Client {
	if path == "" {
		path = ResolvePath()
	}
	return &Client{path: path, log: log}
}

// Path returns the adb binary the client runs.
func (c *Client) Path() string { return c.path }

// ResolvePath finds adb under ANDROID_HOME or ANDROID_SDK_ROOT, falling
// back to "adb" on PATH.
func ResolvePath() string {
	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}
	for _, env := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		root := os.Getenv(env)
		if root == "" {
			continue
		}
		p := filepath.Join(root, "platform-tools", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "adb"
}

// ValidateSerial rejects serials that could not have come from adb.
func ValidateSerial(serial string) error {
	if serial == "" {
		return errors.New("serial cannot be empty")
	}
	if len(serial) > 256 {
		return errors.New("serial too long (max 256 characters)")
	}
	if !serialPattern.MatchString(serial) {
		return fmt.Errorf("invalid serial %q", serial)
	}
	return nil
}

// ListDevices runs "adb devices".
func (c *Client) ListDevices(ctx context.Context) ([]device.Entry, error) {
	out, err := c.run(ctx, "devices", "", "devices")
	if err != nil {
		return nil, err
	}
	return ParseDevices(string(out)), nil
}

// Shell runs command through the device shell.
func (c *Client) Shell(ctx context.Context, serial, command string) ([]byte, error) {
	if err := ValidateSerial(serial); err != nil {
		return nil, err
	}
	return c.run(ctx, "shell", serial, "-s", serial, "shell", command)
}

// Screencap captures the screen over exec-out, which keeps the PNG bytes
// free of terminal line-ending translation.
func (c *Client) Screencap(ctx context.Context, serial string) ([]byte, error) {
	if err := ValidateSerial(serial); err != nil {
		return nil, err
	}
	out, err := c.run(ctx, "screencap", serial, "-s", serial, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(out, pngSignature) {
		return nil, &device.BridgeError{Op: "screencap", Serial: serial, Err: errors.New("output is not a PNG image")}
	}
	return out, nil
}

// StartActivity runs "am start". am reports most failures on stdout with
// a zero exit status, so the output is checked as well.
func (c *Client) StartActivity(ctx context.Context, serial string, opts device.ActivityOptions) error {
	if err := ValidateSerial(serial); err != nil {
		return err
	}
	args := append([]string{"-s", serial, "shell"}, ActivityArgs(opts)...)
	out, err := c.run(ctx, "start activity", serial, args...)
	if err != nil {
		return err
	}
	if msg := activityFailure(string(out)); msg != "" {
		return &device.BridgeError{Op: "start activity", Serial: serial, Err: errors.New(msg)}
	}
	return nil
}

// ActivityArgs builds the am command line for opts.
func ActivityArgs(opts device.ActivityOptions) []string {
	args := []string{"am", "start"}
	if opts.Wait {
		args = append(args, "-W")
	}
	if opts.Action != "" {
		args = append(args, "-a", opts.Action)
	}
	if opts.Data != "" {
		args = append(args, "-d", opts.Data)
	}
	if opts.Component != "" {
		args = append(args, "-n", opts.Component)
	}
	return args
}

func activityFailure(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Error:") || strings.HasPrefix(line, "Error type") {
			return line
		}
	}
	return ""
}

func (c *Client) run(ctx context.Context, op, serial string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log.Trace().Str("op", op).Strs("args", args).Msg("adb")
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		output := stderr.String()
		if output == "" {
			output = stdout.String()
		}
		return nil, &device.BridgeError{Op: op, Serial: serial, Output: output, Err: err}
	}
	return stdout.Bytes(), nil
}

// ParseDevices parses "adb devices" output into entries. The header and
// daemon notices are skipped; the state column becomes Type.
func ParseDevices(out string) []device.Entry {
	var devices []device.Entry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, device.Entry{ID: fields[0], Type: fields[1]})
	}
	return devices
}

var _ device.Bridge = (*Client)(nil)
