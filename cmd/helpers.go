package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hamen/android-mcp/internal/config"
	"github.com/hamen/android-mcp/internal/device"
	"github.com/hamen/android-mcp/internal/device/adb"
	"github.com/hamen/android-mcp/internal/logging"
)

// newBridge builds the device bridge. Tests replace it with a scripted one.
var newBridge = func(c config.Config, log zerolog.Logger) device.Bridge {
	return adb.New(c.ADBPath, logging.Component(log, "adb"))
}

// newService wires the configured bridge into a device service.
func newService() *device.Service {
	return device.NewService(newBridge(cfg, logger), device.Options{
		Timeout:       cfg.Timeout,
		DefaultSerial: cfg.DefaultSerial,
		Logger:        logging.Component(logger, "device"),
	})
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
