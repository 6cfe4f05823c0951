package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const serialHelp = "Device serial from adb devices. Defaults to the selected device, or the only attached one."

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() error {
	tools := []struct {
		tool    mcp.Tool
		extra   map[string]any
		handler mcpserver.ToolHandlerFunc
	}{
		{
			mcp.NewTool("selectDevice",
				mcp.WithDescription("Select the default device for subsequent calls"),
				mcp.WithString("serial", mcp.Required(), mcp.MinLength(1), mcp.Description("Device serial from adb devices")),
			),
			nil,
			s.handleSelectDevice,
		},
		{
			mcp.NewTool("keyEvent",
				mcp.WithDescription("Send an Android key event (e.g. 3 HOME, 4 BACK, 66 ENTER)"),
				mcp.WithNumber("keyCode", mcp.Required(), mcp.Min(0), mcp.Description("Android KeyEvent code")),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			integerProps("keyCode"),
			s.handleKeyEvent,
		},
		{
			mcp.NewTool("tap",
				mcp.WithDescription("Tap at screen coordinates in device pixels"),
				mcp.WithNumber("x", mcp.Required(), mcp.Min(0), mcp.Description("X coordinate")),
				mcp.WithNumber("y", mcp.Required(), mcp.Min(0), mcp.Description("Y coordinate")),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			integerProps("x", "y"),
			s.handleTap,
		},
		{
			mcp.NewTool("text",
				mcp.WithDescription("Type text into the focused input field"),
				mcp.WithString("text", mcp.Required(), mcp.Description("Text to type")),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			nil,
			s.handleText,
		},
		{
			mcp.NewTool("startActivity",
				mcp.WithDescription("Start an activity and wait for it to launch"),
				mcp.WithString("component", mcp.Required(), mcp.MinLength(1), mcp.Description("Component name, e.g. com.example/.MainActivity")),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			nil,
			s.handleStartActivity,
		},
		{
			mcp.NewTool("screenshot",
				mcp.WithDescription("Capture the screen as a base64 image. PNG at full size by default."),
				mcp.WithString("serial", mcp.Description(serialHelp)),
				mcp.WithNumber("scale", mcp.Min(0.05), mcp.Max(1), mcp.Description("Downscale factor, 0.05 to 1 (default 1)")),
				mcp.WithString("format", mcp.Enum("png", "jpeg", "jpg"), mcp.Description("Image format (default png)")),
				mcp.WithNumber("quality", mcp.Min(1), mcp.Max(100), mcp.Description("JPEG quality (default 80)")),
				mcp.WithBoolean("annotate", mcp.Description("Draw bounds and tap points of labeled nodes from a fresh UI dump")),
			),
			integerProps("quality"),
			s.handleScreenshot,
		},
		{
			mcp.NewTool("uiDump",
				mcp.WithDescription("Dump the current UI hierarchy as a JSON tree of {text, contentDesc, resourceId, class, bounds, children}"),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			nil,
			s.handleUIDump,
		},
		{
			mcp.NewTool("findAndTap",
				mcp.WithDescription("Find the first node whose text or content description matches (case-insensitive, exact) and tap its center"),
				mcp.WithString("text", mcp.Description("Visible text to match")),
				mcp.WithString("contentDesc", mcp.Description("Accessibility description to match")),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			requireOneOfNonEmpty("text", "contentDesc"),
			s.handleFindAndTap,
		},
		{
			mcp.NewTool("findNodes",
				mcp.WithDescription("List nodes whose text or content description matches (case-insensitive, exact), with paths and tap points"),
				mcp.WithString("text", mcp.Description("Visible text to match")),
				mcp.WithString("contentDesc", mcp.Description("Accessibility description to match")),
				mcp.WithNumber("limit", mcp.Min(0), mcp.Description("Maximum matches to return (0 for all)")),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			merged(requireOneOfNonEmpty("text", "contentDesc"), integerProps("limit")),
			s.handleFindNodes,
		},
		{
			mcp.NewTool("listDevicesDetailed",
				mcp.WithDescription("List attached devices with model, manufacturer, SDK level, device and product names"),
			),
			nil,
			s.handleListDevicesDetailed,
		},
		{
			mcp.NewTool("deviceInfo",
				mcp.WithDescription("Show model, manufacturer, SDK level, device and product names for one device"),
				mcp.WithString("serial", mcp.Description(serialHelp)),
			),
			nil,
			s.handleDeviceInfo,
		},
	}

	for _, t := range tools {
		if err := s.addTool(t.tool, t.extra, t.handler); err != nil {
			return err
		}
	}
	return nil
}
