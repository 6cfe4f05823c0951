// Package server exposes device operations as MCP tools.
package server

import (
	"context"
	"fmt"
	stdlog "log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/hamen/android-mcp/internal/config"
	"github.com/hamen/android-mcp/internal/device"
	"github.com/hamen/android-mcp/internal/version"
)

// Name is the server name reported during MCP initialization.
const Name = "android-mcp"

// Server wraps the MCP server with the device service.
type Server struct {
	svc       *device.Service
	mcp       *mcpserver.MCPServer
	validator *Validator
	log       zerolog.Logger
	handlers  map[string]mcpserver.ToolHandlerFunc
}

// New creates a server with every tool registered.
func New(svc *device.Service, log zerolog.Logger) (*Server, error) {
	s := &Server{
		svc:       svc,
		validator: NewValidator(),
		log:       log,
		handlers:  make(map[string]mcpserver.ToolHandlerFunc),
	}
	s.mcp = mcpserver.NewMCPServer(
		Name,
		version.Version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve runs the server on the given transport until it stops.
func (s *Server) Serve(transport string, port int) error {
	switch transport {
	case config.TransportStdio:
		s.log.Info().Msg("serving MCP on stdio")
		return mcpserver.ServeStdio(s.mcp, mcpserver.WithErrorLogger(stdlog.New(s.log, "", 0)))
	case config.TransportHTTP:
		addr := fmt.Sprintf(":%d", port)
		s.log.Info().Str("addr", addr).Msg("serving MCP on streamable HTTP")
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

// addTool registers tool with schema validation, logging and panic
// recovery around h.
func (s *Server) addTool(tool mcp.Tool, extra map[string]any, h mcpserver.ToolHandlerFunc) error {
	if err := s.validator.Register(tool, extra); err != nil {
		return err
	}
	wrapped := s.instrument(tool.Name, h)
	s.handlers[tool.Name] = wrapped
	s.mcp.AddTool(tool, wrapped)
	return nil
}

// instrument gives every call a correlation id and converts invalid
// arguments and panics into tool errors, so one bad call never reaches
// the transport as a protocol failure.
func (s *Server) instrument(name string, h mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		args := request.GetArguments()
		logCtx := s.log.With().Str("call_id", uuid.NewString()).Str("tool", name)
		if serial, ok := args["serial"].(string); ok && serial != "" {
			logCtx = logCtx.Str("serial", serial)
		}
		log := logCtx.Logger()
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("tool panicked")
				result, err = mcp.NewToolResultError(fmt.Sprintf("internal error: %v", r)), nil
			}
			failed := result == nil || result.IsError
			ev := log.Info()
			if failed {
				ev = log.Warn()
			}
			ev.Dur("elapsed", time.Since(start)).Bool("is_error", failed).Msg("tool call")
		}()

		log.Debug().Interface("args", args).Msg("tool call started")
		if verr := s.validator.Validate(name, args); verr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments for %s: %v", name, verr)), nil
		}
		return h(log.WithContext(ctx), request)
	}
}
