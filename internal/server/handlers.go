package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/hamen/android-mcp/internal/device"
	"github.com/hamen/android-mcp/internal/model"
	"github.com/hamen/android-mcp/internal/screen"
)

const okText = "ok"

// toolError reports err to the caller as a tool-level failure.
func toolError(ctx context.Context, err error) (*mcp.CallToolResult, error) {
	zerolog.Ctx(ctx).Warn().Err(err).Str("kind", device.Kind(err)).Msg("tool failed")
	return mcp.NewToolResultError(err.Error()), nil
}

func formatJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func queryParam(params map[string]any) model.Query {
	return model.Query{
		Text:        stringParam(params, "text", ""),
		ContentDesc: stringParam(params, "contentDesc", ""),
	}
}

func (s *Server) handleSelectDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serial := stringParam(request.GetArguments(), "serial", "")
	if err := s.svc.Select(serial); err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText("selected=" + s.svc.Selected()), nil
}

func (s *Server) handleKeyEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	err := s.svc.KeyEvent(ctx, stringParam(params, "serial", ""), intParam(params, "keyCode", 0))
	if err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText(okText), nil
}

func (s *Server) handleTap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x, y := intParam(params, "x", 0), intParam(params, "y", 0)
	if err := s.svc.Tap(ctx, stringParam(params, "serial", ""), x, y); err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText(okText), nil
}

func (s *Server) handleText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	err := s.svc.InputText(ctx, stringParam(params, "serial", ""), stringParam(params, "text", ""))
	if err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText(okText), nil
}

func (s *Server) handleStartActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	err := s.svc.StartActivity(ctx, stringParam(params, "serial", ""), stringParam(params, "component", ""))
	if err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText(okText), nil
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	serial, err := s.svc.Resolve(ctx, stringParam(params, "serial", ""))
	if err != nil {
		return toolError(ctx, err)
	}

	opts := screen.Options{
		Scale:   floatParam(params, "scale", 1),
		Format:  stringParam(params, "format", screen.FormatPNG),
		Quality: intParam(params, "quality", screen.DefaultQuality),
	}
	if boolParam(params, "annotate", false) {
		root, err := s.svc.UIDump(ctx, serial)
		if err != nil {
			return toolError(ctx, fmt.Errorf("annotate: %w", err))
		}
		for _, n := range model.Flatten(&root) {
			if screen.Labeled(n) {
				opts.Annotate = append(opts.Annotate, n)
			}
		}
	}

	png, err := s.svc.Screenshot(ctx, serial)
	if err != nil {
		return toolError(ctx, err)
	}
	img, err := screen.Process(png, opts)
	if err != nil {
		return toolError(ctx, err)
	}
	zerolog.Ctx(ctx).Debug().
		Int("width", img.Width).
		Int("height", img.Height).
		Int("bytes", len(img.Data)).
		Str("mime", img.MIMEType).
		Msg("screenshot captured")

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewImageContent(base64.StdEncoding.EncodeToString(img.Data), img.MIMEType),
		},
	}, nil
}

func (s *Server) handleUIDump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := s.svc.UIDump(ctx, stringParam(request.GetArguments(), "serial", ""))
	if err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText(formatJSON(root)), nil
}

func (s *Server) handleFindAndTap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	tapped, err := s.svc.FindAndTap(ctx, stringParam(params, "serial", ""), queryParam(params))
	if err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]any{
		"ok":     true,
		"tapped": tapped,
	})), nil
}

func (s *Server) handleFindNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	matches, err := s.svc.FindNodes(ctx, stringParam(params, "serial", ""), queryParam(params), intParam(params, "limit", 0))
	if err != nil {
		return toolError(ctx, err)
	}
	if matches == nil {
		matches = []model.Match{}
	}
	return mcp.NewToolResultText(formatJSON(matches)), nil
}

func (s *Server) handleListDevicesDetailed(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.svc.ListDetailed(ctx)
	if err != nil {
		return toolError(ctx, err)
	}
	if infos == nil {
		infos = []device.Info{}
	}
	return mcp.NewToolResultText(formatJSON(infos)), nil
}

func (s *Server) handleDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.svc.DeviceInfo(ctx, stringParam(request.GetArguments(), "serial", ""))
	if err != nil {
		return toolError(ctx, err)
	}
	return mcp.NewToolResultText(formatJSON(info)), nil
}
