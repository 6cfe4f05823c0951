package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamen/android-mcp/internal/model"
	"github.com/hamen/android-mcp/internal/output"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find nodes by text or content description",
	Long: `Search the current screen for nodes whose text or content description equals
the query, ignoring case. Matches are listed in depth-first order.

With --tap the first match is tapped at the center of its bounds.`,
	Example: `  android-mcp find --text "Sign in"
  android-mcp find --content-desc Settings --tap`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().String("text", "", "Visible text to match")
	findCmd.Flags().String("content-desc", "", "Accessibility description to match")
	findCmd.Flags().Int("limit", 0, "Maximum matches to list (0 for all)")
	findCmd.Flags().Bool("tap", false, "Tap the first match")
}

func runFind(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	desc, _ := cmd.Flags().GetString("content-desc")
	limit, _ := cmd.Flags().GetInt("limit")
	tap, _ := cmd.Flags().GetBool("tap")

	q := model.Query{Text: text, ContentDesc: desc}
	if q.Empty() {
		return fmt.Errorf("--text or --content-desc is required")
	}

	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()
	serial, err := svc.Resolve(ctx, "")
	if err != nil {
		return err
	}

	if tap {
		p, err := svc.FindAndTap(ctx, serial, q)
		if err != nil {
			return err
		}
		return output.Print(output.FindResult{Serial: serial, Matches: []model.Match{}, Tapped: &p})
	}

	matches, err := svc.FindNodes(ctx, serial, q, limit)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []model.Match{}
	}
	return output.Print(output.FindResult{Serial: serial, Matches: matches})
}
