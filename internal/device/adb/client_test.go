package adb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hamen/android-mcp/internal/device"
)

func TestParseDevices(t *testing.T) {
	out := "* daemon not running; starting now at tcp:5037\n" +
		"* daemon started successfully\n" +
		"List of devices attached\n" +
		"emulator-5554\tdevice\n" +
		"R58M42\tunauthorized\n" +
		"192.168.1.20:5555\toffline\n" +
		"\n"
	want := []device.Entry{
		{ID: "emulator-5554", Type: "device"},
		{ID: "R58M42", Type: "unauthorized"},
		{ID: "192.168.1.20:5555", Type: "offline"},
	}
	if got := ParseDevices(out); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if got := ParseDevices("List of devices attached\n\n"); len(got) != 0 {
		t.Errorf("expected no devices, got %+v", got)
	}
}

func TestValidateSerial(t *testing.T) {
	valid := []string{"emulator-5554", "192.168.1.20:5555", "R58M42_x.y"}
	for _, s := range valid {
		if err := ValidateSerial(s); err != nil {
			t.Errorf("ValidateSerial(%q) = %v", s, err)
		}
	}
	invalid := []string{"", "a;reboot", "a b", "$(id)", strings.Repeat("a", 257)}
	for _, s := range invalid {
		if err := ValidateSerial(s); err == nil {
			t.Errorf("ValidateSerial(%q) should fail", s)
		}
	}
}

func TestActivityArgs(t *testing.T) {
	got := ActivityArgs(device.ActivityOptions{Component: "com.example/.Main", Wait: true})
	want := []string{"am", "start", "-W", "-n", "com.example/.Main"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	got = ActivityArgs(device.ActivityOptions{Action: "android.intent.action.VIEW", Data: "https://example.com"})
	want = []string{"am", "start", "-a", "android.intent.action.VIEW", "-d", "https://example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestActivityFailure(t *testing.T) {
	out := "Starting: Intent { cmp=com.example/.Nope }\nError type 3\nError: Activity class {com.example/com.example.Nope} does not exist.\n"
	if msg := activityFailure(out); msg != "Error type 3" {
		t.Errorf("got %q", msg)
	}
	if msg := activityFailure("Status: ok\nLaunchState: COLD\n"); msg != "" {
		t.Errorf("unexpected failure %q", msg)
	}
}

func TestResolvePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("adb name differs on windows")
	}
	sdk := t.TempDir()
	tools := filepath.Join(sdk, "platform-tools")
	if err := os.MkdirAll(tools, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tools, "adb"), nil, 0o755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ANDROID_HOME", sdk)
	t.Setenv("ANDROID_SDK_ROOT", "")
	if got := ResolvePath(); got != filepath.Join(tools, "adb") {
		t.Errorf("got %q", got)
	}

	t.Setenv("ANDROID_HOME", t.TempDir())
	if got := ResolvePath(); got != "adb" {
		t.Errorf("expected PATH fallback, got %q", got)
	}
}

// fakeADB writes a shell script standing in for adb.
func fakeADB(t *testing.T, script string) *Client {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "adb")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return New(path, zerolog.Nop())
}

func TestClient_Shell(t *testing.T) {
	c := fakeADB(t, `echo "$@"`)
	out, err := c.Shell(context.Background(), "emu-1", "input tap 1 2")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(out)); got != "-s emu-1 shell input tap 1 2" {
		t.Errorf("adb saw %q", got)
	}

	if _, err := c.Shell(context.Background(), "bad serial", "id"); err == nil {
		t.Error("expected invalid serial to be rejected")
	}
}

func TestClient_Failure(t *testing.T) {
	c := fakeADB(t, `echo "error: device 'emu-1' not found" >&2; exit 1`)
	_, err := c.Shell(context.Background(), "emu-1", "id")
	var be *device.BridgeError
	if !errors.As(err, &be) {
		t.Fatalf("expected BridgeError, got %v", err)
	}
	if !strings.Contains(be.Output, "not found") {
		t.Errorf("output = %q", be.Output)
	}
}

func TestClient_ContextKillsProcess(t *testing.T) {
	c := fakeADB(t, `sleep 5`)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Shell(ctx, "emu-1", "id")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("process not killed promptly: %s", elapsed)
	}
}

func TestClient_Screencap(t *testing.T) {
	c := fakeADB(t, `printf '\211PNG\r\n\032\nrest'`)
	out, err := c.Screencap(context.Background(), "emu-1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), string(pngSignature)) {
		t.Errorf("got %q", out)
	}

	notPNG := fakeADB(t, `echo "screencap: not found"`)
	if _, err := notPNG.Screencap(context.Background(), "emu-1"); err == nil {
		t.Error("expected error for non-PNG output")
	}
}

func TestClient_ListDevices(t *testing.T) {
	c := fakeADB(t, `printf 'List of devices attached\nemulator-5554\tdevice\n'`)
	got, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "emulator-5554" {
		t.Errorf("got %+v", got)
	}
}

func TestClient_StartActivityReportsAmError(t *testing.T) {
	c := fakeADB(t, `echo "Error: Activity not started, unable to resolve Intent"`)
	err := c.StartActivity(context.Background(), "emu-1", device.ActivityOptions{Component: "x/.Y", Wait: true})
	if err == nil || !strings.Contains(err.Error(), "unable to resolve Intent") {
		t.Errorf("got %v", err)
	}
}
