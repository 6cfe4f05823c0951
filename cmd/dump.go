package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hamen/android-mcp/internal/model"
	"github.com/hamen/android-mcp/internal/output"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the UI hierarchy",
	Long: `Dump the current screen's UI hierarchy as a tree of nodes with text,
contentDesc, resourceId, class and bounds.

--flat prints only nodes that carry text, a description or a resource id,
each with its depth and a breadcrumb path of class names.`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("flat", false, "Output a flat list of identifiable nodes with paths")
}

func runDump(cmd *cobra.Command, args []string) error {
	flat, _ := cmd.Flags().GetBool("flat")

	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()
	serial, err := svc.Resolve(ctx, "")
	if err != nil {
		return err
	}
	root, err := svc.UIDump(ctx, serial)
	if err != nil {
		return err
	}

	ts := time.Now().Unix()
	if flat {
		nodes := model.Flatten(&root)
		if nodes == nil {
			nodes = []model.FlatNode{}
		}
		return output.Print(output.DumpFlatResult{Serial: serial, TS: ts, Nodes: nodes})
	}
	return output.Print(output.DumpResult{Serial: serial, TS: ts, Count: root.Count(), Root: root})
}
