package device

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxInfoFanout caps concurrent getprop calls in ListDetailed.
const maxInfoFanout = 4

// Info describes one device. For a device whose properties could not be
// read, only Serial, Type and Error are set.
type Info struct {
	Serial       string `yaml:"serial"                 json:"serial"`
	Type         string `yaml:"type,omitempty"         json:"type,omitempty"`
	Model        string `yaml:"model,omitempty"        json:"model,omitempty"`
	Manufacturer string `yaml:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	SDK          string `yaml:"sdk,omitempty"          json:"sdk,omitempty"`
	Device       string `yaml:"device,omitempty"       json:"device,omitempty"`
	Product      string `yaml:"product,omitempty"      json:"product,omitempty"`
	Error        string `yaml:"error,omitempty"        json:"error,omitempty"`
}

var infoProps = []string{
	"ro.product.model",
	"ro.product.manufacturer",
	"ro.build.version.sdk",
	"ro.product.device",
	"ro.product.name",
}

func infoCommand() string {
	cmds := make([]string, len(infoProps))
	for i, p := range infoProps {
		cmds[i] = "getprop " + p
	}
	return strings.Join(cmds, " && ")
}

// parseInfo maps getprop output lines onto Info in infoProps order. An
// empty property still prints a line, so positions stay aligned.
func parseInfo(serial string, out []byte) Info {
	lines := strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
	val := func(i int) string {
		if i < len(lines) {
			return strings.TrimSpace(lines[i])
		}
		return ""
	}
	return Info{
		Serial:       serial,
		Model:        val(0),
		Manufacturer: val(1),
		SDK:          val(2),
		Device:       val(3),
		Product:      val(4),
	}
}

// DeviceInfo reads identifying properties from one device.
func (s *Service) DeviceInfo(ctx context.Context, serial string) (Info, error) {
	var info Info
	err := s.run(ctx, serial, func(serial string) error {
		out, err := s.shell(ctx, "getprop", serial, infoCommand())
		if err != nil {
			return err
		}
		info = parseInfo(serial, out)
		return nil
	})
	return info, err
}

// ListDetailed returns Info for every attached device, in listing order.
// A device that fails gets an entry carrying its error; only a failure to
// list devices at all is returned as an error.
func (s *Service) ListDetailed(ctx context.Context) ([]Info, error) {
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, len(devices))
	var g errgroup.Group
	g.SetLimit(maxInfoFanout)
	for i, d := range devices {
		g.Go(func() error {
			info, err := s.DeviceInfo(ctx, d.ID)
			if err != nil {
				s.log.Warn().Err(err).Str("serial", d.ID).Msg("device info failed")
				infos[i] = Info{Serial: d.ID, Type: d.Type, Error: err.Error()}
				return nil
			}
			info.Type = d.Type
			infos[i] = info
			return nil
		})
	}
	_ = g.Wait()
	return infos, nil
}
