package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hamen/android-mcp/internal/device"
	"github.com/hamen/android-mcp/internal/output"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached devices",
	Long:  "List attached devices with their state, model, manufacturer, SDK level, device and product names.",
	RunE:  runDevices,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show properties of one device",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(infoCmd)
	devicesCmd.Flags().Bool("brief", false, "Only list serials and states, without querying each device")
}

func runDevices(cmd *cobra.Command, args []string) error {
	brief, _ := cmd.Flags().GetBool("brief")

	ctx, cancel := commandContext()
	defer cancel()
	svc := newService()

	if brief {
		entries, err := svc.ListDevices(ctx)
		if err != nil {
			return err
		}
		infos := make([]device.Info, len(entries))
		for i, e := range entries {
			infos[i] = device.Info{Serial: e.ID, Type: e.Type}
		}
		return output.Print(infos)
	}

	infos, err := svc.ListDetailed(ctx)
	if err != nil {
		return err
	}
	if infos == nil {
		infos = []device.Info{}
	}
	return output.Print(infos)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()
	info, err := newService().DeviceInfo(ctx, "")
	if err != nil {
		return err
	}
	return output.Print(info)
}
