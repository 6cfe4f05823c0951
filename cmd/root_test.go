package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"

	"github.com/hamen/android-mcp/internal/config"
	"github.com/hamen/android-mcp/internal/device"
	"github.com/hamen/android-mcp/internal/device/devicetest"
)

const loginDump = `<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,2400]">
    <node text="Login" class="android.widget.Button" bounds="[10,20][110,60]" />
  </node>
</hierarchy>`

// resetFlags restores every flag to its default so commands can be
// executed repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command against b and returns stdout.
func run(t *testing.T, b *devicetest.Bridge, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANDROID_SERIAL", "")

	prev := newBridge
	newBridge = func(config.Config, zerolog.Logger) device.Bridge { return b }
	t.Cleanup(func() { newBridge = prev })

	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--format", "json", "--log-level", "error"}, args...))

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	runErr := rootCmd.Execute()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"serve", "devices", "info", "dump", "find", "tap", "key", "text", "start", "screenshot"}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestDumpCommand(t *testing.T) {
	b := devicetest.New("emulator-5554")
	b.SetDump(loginDump)

	out, err := run(t, b, "dump")
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.Get(out, "serial").String(); got != "emulator-5554" {
		t.Errorf("serial = %q", got)
	}
	if got := gjson.Get(out, "count").Int(); got != 3 {
		t.Errorf("count = %d", got)
	}
	if got := gjson.Get(out, "root.children.0.children.0.text").String(); got != "Login" {
		t.Errorf("child text = %q", got)
	}

	out, err = run(t, b, "dump", "--flat")
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.Get(out, "nodes.1.path").String(); got != "FrameLayout > Button" {
		t.Errorf("path = %q: %s", got, out)
	}
}

func TestFindCommand(t *testing.T) {
	b := devicetest.New("emulator-5554")
	b.SetDump(loginDump)

	out, err := run(t, b, "find", "--text", "LOGIN")
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.Get(out, "matches.#").Int(); got != 1 {
		t.Fatalf("matches = %d: %s", got, out)
	}
	if len(b.Taps()) != 0 {
		t.Error("find without --tap must not tap")
	}

	out, err = run(t, b, "find", "--text", "login", "--tap")
	if err != nil {
		t.Fatal(err)
	}
	if x, y := gjson.Get(out, "tapped.x").Int(), gjson.Get(out, "tapped.y").Int(); x != 60 || y != 40 {
		t.Errorf("tapped = (%d,%d): %s", x, y, out)
	}

	if _, err := run(t, b, "find"); err == nil {
		t.Error("expected error without a query")
	}
}

func TestInputCommands(t *testing.T) {
	b := devicetest.New("emulator-5554")

	if _, err := run(t, b, "tap", "5", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, b, "key", "4"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, b, "text", "a b"); err != nil {
		t.Fatal(err)
	}
	want := []string{"input tap 5 7", "input keyevent 4", "input text a%sb"}
	got := b.Commands("emulator-5554")
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %q, want %q", got, want)
	}

	if _, err := run(t, b, "tap", "-1", "7"); err == nil {
		t.Error("expected error for negative coordinate")
	}
}

func TestSerialFlag(t *testing.T) {
	b := devicetest.New("a", "b")

	if _, err := run(t, b, "key", "3"); err == nil {
		t.Fatal("expected selection error with two devices")
	}
	if _, err := run(t, b, "--serial", "b", "key", "3"); err != nil {
		t.Fatal(err)
	}
	if cmds := b.Commands("b"); len(cmds) != 1 {
		t.Errorf("commands on b = %q", cmds)
	}
}

func TestDevicesCommand(t *testing.T) {
	b := devicetest.New("a")
	b.SetShell("getprop", "Pixel 7\nGoogle\n34\npanther\npanther\n", nil)

	out, err := run(t, b, "devices")
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.Get(out, "0.model").String(); got != "Pixel 7" {
		t.Errorf("model = %q: %s", got, out)
	}

	out, err = run(t, b, "devices", "--brief")
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.Get(out, "0.type").String(); got != "device" {
		t.Errorf("type = %q: %s", got, out)
	}
}

func TestInvalidTimeoutFlag(t *testing.T) {
	if _, err := run(t, devicetest.New("a"), "--timeout", "soon", "key", "3"); err == nil {
		t.Error("expected error for bad --timeout")
	}
}
