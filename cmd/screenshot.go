package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hamen/android-mcp/internal/model"
	"github.com/hamen/android-mcp/internal/screen"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot",
	Long: `Capture the device screen. Without --output the image is written to stdout
as base64, the same payload the screenshot tool returns.

With --annotate a fresh UI dump is taken first and every node with text or a
content description gets its bounds and tap point drawn on the image.`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().String("format", screen.FormatPNG, "Image format: png, jpeg")
	screenshotCmd.Flags().Int("quality", screen.DefaultQuality, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 1, "Scale factor 0.05-1.0 (for token efficiency)")
	screenshotCmd.Flags().Bool("annotate", false, "Draw bounds and tap points of labeled nodes")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")
	scale, _ := cmd.Flags().GetFloat64("scale")
	annotate, _ := cmd.Flags().GetBool("annotate")
	if scale < 0.05 || scale > 1 {
		return fmt.Errorf("--scale must be between 0.05 and 1, got %g", scale)
	}

	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()
	serial, err := svc.Resolve(ctx, "")
	if err != nil {
		return err
	}

	opts := screen.Options{Scale: scale, Format: format, Quality: quality}
	if annotate {
		root, err := svc.UIDump(ctx, serial)
		if err != nil {
			return err
		}
		for _, n := range model.Flatten(&root) {
			if screen.Labeled(n) {
				opts.Annotate = append(opts.Annotate, n)
			}
		}
	}

	png, err := svc.Screenshot(ctx, serial)
	if err != nil {
		return err
	}
	img, err := screen.Process(png, opts)
	if err != nil {
		return err
	}
	logger.Debug().Int("width", img.Width).Int("height", img.Height).Str("mime", img.MIMEType).Msg("screenshot captured")

	if outPath != "" {
		return os.WriteFile(outPath, img.Data, 0644)
	}

	// Default: write to stdout as base64 for easy agent consumption
	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(img.Data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
