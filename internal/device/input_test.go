package device

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEscapeInputText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"hello world", "hello%sworld"},
		{"", `""`},
		{"it's", `it\'s`},
		{"a(b)", `a\(b\)`},
		{`back\slash`, `back\\slash`},
		{"a&b;c|d", `a\&b\;c\|d`},
		{"$HOME", `\$HOME`},
		{"ünïcode", "ünïcode"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := EscapeInputText(tt.in); got != tt.want {
				t.Errorf("EscapeInputText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInfo_KeepsPositionsForEmptyProps(t *testing.T) {
	info := parseInfo("emu", []byte("sdk_gphone64\r\n\r\n34\r\nemu64a\r\nsdk_phone64\r\n"))
	if info.Model != "sdk_gphone64" || info.Manufacturer != "" || info.SDK != "34" ||
		info.Device != "emu64a" || info.Product != "sdk_phone64" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestInfoCommand(t *testing.T) {
	want := "getprop ro.product.model && getprop ro.product.manufacturer && getprop ro.build.version.sdk && getprop ro.product.device && getprop ro.product.name"
	if got := infoCommand(); got != want {
		t.Errorf("infoCommand() = %q", got)
	}
}

func TestLockSet(t *testing.T) {
	l := newLockSet()
	release, err := l.acquire(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}

	other, err := l.acquire(context.Background(), "b")
	if err != nil {
		t.Fatalf("different serial should not block: %v", err)
	}
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.acquire(ctx, "a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline while held, got %v", err)
	}

	release()
	again, err := l.acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("expected slot after release: %v", err)
	}
	again()
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrSelectionRequired, "selection_required"},
		{ErrTimeout, "timeout"},
		{ErrNotFound, "not_found"},
		{ErrBoundsUnavailable, "bounds_unavailable"},
		{&BridgeError{Op: "shell", Err: errors.New("boom")}, "bridge_failure"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestBridgeError_Message(t *testing.T) {
	err := &BridgeError{Op: "shell", Serial: "emu", Err: errors.New("exit status 1"), Output: "  error: device offline\n"}
	want := "shell on emu: exit status 1: error: device offline"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
