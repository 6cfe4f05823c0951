package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hamen/android-mcp/internal/model"
	"github.com/hamen/android-mcp/internal/output"
)

// ActionResult is the output of a successful input command.
type ActionResult struct {
	OK     bool         `yaml:"ok"                json:"ok"`
	Action string       `yaml:"action"            json:"action"`
	Serial string       `yaml:"serial"            json:"serial"`
	Point  *model.Point `yaml:"point,omitempty"   json:"point,omitempty"`
	Detail string       `yaml:"detail,omitempty"  json:"detail,omitempty"`
}

var tapCmd = &cobra.Command{
	Use:   "tap <x> <y>",
	Short: "Tap at screen coordinates",
	Args:  cobra.ExactArgs(2),
	RunE:  runTap,
}

var keyCmd = &cobra.Command{
	Use:     "key <keycode>",
	Short:   "Send a key event",
	Long:    "Send an Android KeyEvent code, e.g. 3 HOME, 4 BACK, 26 POWER, 66 ENTER.",
	Example: "  android-mcp key 4",
	Args:    cobra.ExactArgs(1),
	RunE:    runKey,
}

var textCmd = &cobra.Command{
	Use:   "text <text>",
	Short: "Type text into the focused field",
	Args:  cobra.ExactArgs(1),
	RunE:  runText,
}

var startCmd = &cobra.Command{
	Use:     "start <component>",
	Short:   "Start an activity and wait for it",
	Example: "  android-mcp start com.android.settings/.Settings",
	Args:    cobra.ExactArgs(1),
	RunE:    runStart,
}

func init() {
	rootCmd.AddCommand(tapCmd, keyCmd, textCmd, startCmd)
}

func parseNonNegative(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, s)
	}
	return n, nil
}

func runTap(cmd *cobra.Command, args []string) error {
	x, err := parseNonNegative("x", args[0])
	if err != nil {
		return err
	}
	y, err := parseNonNegative("y", args[1])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()
	serial, err := svc.Resolve(ctx, "")
	if err != nil {
		return err
	}
	if err := svc.Tap(ctx, serial, x, y); err != nil {
		return err
	}
	return output.Print(ActionResult{OK: true, Action: "tap", Serial: serial, Point: &model.Point{X: x, Y: y}})
}

func runKey(cmd *cobra.Command, args []string) error {
	code, err := parseNonNegative("keycode", args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()
	serial, err := svc.Resolve(ctx, "")
	if err != nil {
		return err
	}
	if err := svc.KeyEvent(ctx, serial, code); err != nil {
		return err
	}
	return output.Print(ActionResult{OK: true, Action: "key", Serial: serial, Detail: args[0]})
}

func runText(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()
	serial, err := svc.Resolve(ctx, "")
	if err != nil {
		return err
	}
	if err := svc.InputText(ctx, serial, args[0]); err != nil {
		return err
	}
	return output.Print(ActionResult{OK: true, Action: "text", Serial: serial})
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()
	serial, err := svc.Resolve(ctx, "")
	if err != nil {
		return err
	}
	if err := svc.StartActivity(ctx, serial, args[0]); err != nil {
		return err
	}
	return output.Print(ActionResult{OK: true, Action: "start", Serial: serial, Detail: args[0]})
}
