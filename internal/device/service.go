// Package device drives attached Android devices through a Bridge. It owns
// device selection, per-call deadlines and per-device serialization; the
// tree logic it relies on lives in the model package.
package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hamen/android-mcp/internal/model"
	"github.com/hamen/android-mcp/internal/uixml"
)

// DefaultTimeout bounds every bridge call when Options.Timeout is zero.
const DefaultTimeout = 8 * time.Second

const dumpPath = "/sdcard/uidump.xml"

var dumpCommand = fmt.Sprintf("uiautomator dump %[1]s && cat %[1]s && rm %[1]s", dumpPath)

// Options configures a Service.
type Options struct {
	Timeout       time.Duration
	DefaultSerial string
	Logger        zerolog.Logger
}

// Service runs device operations against a Bridge.
type Service struct {
	bridge  Bridge
	timeout time.Duration
	log     zerolog.Logger
	locks   *lockSet

	mu       sync.Mutex
	selected string
}

// NewService returns a Service using bridge. DefaultSerial, when set,
// is the initial selection.
func NewService(bridge Bridge, opts Options) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		bridge:   bridge,
		timeout:  timeout,
		log:      opts.Logger,
		locks:    newLockSet(),
		selected: opts.DefaultSerial,
	}
}

// Timeout returns the per-call deadline.
func (s *Service) Timeout() time.Duration { return s.timeout }

// Select makes serial the implicit target for calls that omit one.
func (s *Service) Select(serial string) error {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return errors.New("serial is required")
	}
	s.mu.Lock()
	prev := s.selected
	s.selected = serial
	s.mu.Unlock()
	s.log.Info().Str("serial", serial).Str("previous", prev).Msg("device selected")
	return nil
}

// Selected returns the current selection, or "" when none.
func (s *Service) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Resolve picks the target device: an explicit serial wins, then the
// selection, then the only attached device, which becomes the selection.
// Anything else is ErrSelectionRequired.
func (s *Service) Resolve(ctx context.Context, serial string) (string, error) {
	if serial != "" {
		return serial, nil
	}
	if sel := s.Selected(); sel != "" {
		return sel, nil
	}
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return "", err
	}
	if len(devices) != 1 {
		return "", fmt.Errorf("%w (%d attached)", ErrSelectionRequired, len(devices))
	}
	only := devices[0].ID
	s.mu.Lock()
	if s.selected == "" {
		s.selected = only
	}
	only = s.selected
	s.mu.Unlock()
	s.log.Debug().Str("serial", only).Msg("using sole attached device")
	return only, nil
}

// ListDevices returns the attached devices in bridge order.
func (s *Service) ListDevices(ctx context.Context) ([]Entry, error) {
	return call(ctx, s, "list devices", "", s.bridge.ListDevices)
}

// KeyEvent sends one key code.
func (s *Service) KeyEvent(ctx context.Context, serial string, keyCode int) error {
	return s.run(ctx, serial, func(serial string) error {
		_, err := s.shell(ctx, "keyevent", serial, fmt.Sprintf("input keyevent %d", keyCode))
		return err
	})
}

// Tap taps at (x, y) in device pixels.
func (s *Service) Tap(ctx context.Context, serial string, x, y int) error {
	return s.run(ctx, serial, func(serial string) error {
		return s.tap(ctx, serial, model.Point{X: x, Y: y})
	})
}

// InputText types text into the focused field.
func (s *Service) InputText(ctx context.Context, serial, text string) error {
	return s.run(ctx, serial, func(serial string) error {
		_, err := s.shell(ctx, "input text", serial, "input text "+EscapeInputText(text))
		return err
	})
}

// StartActivity launches component ("pkg/.Activity") and waits for it.
func (s *Service) StartActivity(ctx context.Context, serial, component string) error {
	if strings.TrimSpace(component) == "" {
		return errors.New("component is required")
	}
	return s.run(ctx, serial, func(serial string) error {
		_, err := call(ctx, s, "start activity", serial, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.bridge.StartActivity(ctx, serial, ActivityOptions{Component: component, Wait: true})
		})
		return err
	})
}

// Screenshot returns a PNG of the current screen. When the bridge's
// screencap fails for a reason other than the deadline, the shell
// screencap command is tried once.
func (s *Service) Screenshot(ctx context.Context, serial string) ([]byte, error) {
	var png []byte
	err := s.run(ctx, serial, func(serial string) error {
		var err error
		png, err = call(ctx, s, "screencap", serial, func(ctx context.Context) ([]byte, error) {
			return s.bridge.Screencap(ctx, serial)
		})
		if err == nil && len(png) > 0 {
			return nil
		}
		if errors.Is(err, ErrTimeout) || ctx.Err() != nil {
			return err
		}
		s.log.Warn().Err(err).Str("serial", serial).Msg("screencap failed, falling back to shell")
		png, err = s.shell(ctx, "screencap", serial, "screencap -p")
		if err != nil {
			return err
		}
		if len(png) == 0 {
			return &BridgeError{Op: "screencap", Serial: serial, Err: errors.New("empty image")}
		}
		return nil
	})
	return png, err
}

// UIDump returns a fresh normalized snapshot of the screen.
func (s *Service) UIDump(ctx context.Context, serial string) (model.UiNode, error) {
	var root model.UiNode
	err := s.run(ctx, serial, func(serial string) error {
		var err error
		root, err = s.dump(ctx, serial)
		return err
	})
	return root, err
}

// FindNodes dumps the screen and returns every node matching q in
// pre-order, up to limit (zero for all).
func (s *Service) FindNodes(ctx context.Context, serial string, q model.Query, limit int) ([]model.Match, error) {
	if q.Empty() {
		return nil, ErrQueryRequired
	}
	root, err := s.UIDump(ctx, serial)
	if err != nil {
		return nil, err
	}
	return model.FindAll(&root, q, limit), nil
}

// FindAndTap dumps the screen, finds the first node matching q and taps
// its center. The device stays locked between the dump and the tap.
func (s *Service) FindAndTap(ctx context.Context, serial string, q model.Query) (model.Point, error) {
	if q.Empty() {
		return model.Point{}, ErrQueryRequired
	}
	var tapped model.Point
	err := s.run(ctx, serial, func(serial string) error {
		root, err := s.dump(ctx, serial)
		if err != nil {
			return err
		}
		node := model.Find(&root, q)
		if node == nil {
			return fmt.Errorf("%w for %s", ErrNotFound, describeQuery(q))
		}
		center, ok := node.Center()
		if !ok {
			bounds := "<absent>"
			if node.Bounds != nil {
				bounds = fmt.Sprintf("%q", *node.Bounds)
			}
			return fmt.Errorf("%w (bounds %s)", ErrBoundsUnavailable, bounds)
		}
		if err := s.tap(ctx, serial, center); err != nil {
			return fmt.Errorf("tap at (%d,%d): %w", center.X, center.Y, err)
		}
		tapped = center
		return nil
	})
	return tapped, err
}

// run resolves serial and calls fn while holding that device's lock.
func (s *Service) run(ctx context.Context, serial string, fn func(serial string) error) error {
	serial, err := s.Resolve(ctx, serial)
	if err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	release, err := s.locks.acquire(waitCtx, serial)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("waiting for %s: %w after %s", serial, ErrTimeout, s.timeout)
		}
		return err
	}
	defer release()
	return fn(serial)
}

// call runs fn under the per-call deadline. An overdue call is abandoned
// and reported as ErrTimeout; fn's context is canceled so the underlying
// process is killed.
func call[T any](ctx context.Context, s *Service, op, serial string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	start := time.Now()
	done := make(chan result, 1)
	go func() {
		val, err := fn(ctx)
		done <- result{val, err}
	}()

	var res result
	select {
	case res = <-done:
		if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.err = fmt.Errorf("%s: %w after %s", op, ErrTimeout, s.timeout)
		}
	case <-ctx.Done():
		res.err = ctx.Err()
		if errors.Is(res.err, context.DeadlineExceeded) {
			res.err = fmt.Errorf("%s: %w after %s", op, ErrTimeout, s.timeout)
		}
	}

	s.log.Debug().
		Str("op", op).
		Str("serial", serial).
		Dur("elapsed", time.Since(start)).
		Err(res.err).
		Msg("bridge call")
	return res.val, res.err
}

func (s *Service) shell(ctx context.Context, op, serial, command string) ([]byte, error) {
	return call(ctx, s, op, serial, func(ctx context.Context) ([]byte, error) {
		return s.bridge.Shell(ctx, serial, command)
	})
}

func (s *Service) tap(ctx context.Context, serial string, p model.Point) error {
	_, err := s.shell(ctx, "tap", serial, fmt.Sprintf("input tap %d %d", p.X, p.Y))
	return err
}

func (s *Service) dump(ctx context.Context, serial string) (model.UiNode, error) {
	out, err := s.shell(ctx, "ui dump", serial, dumpCommand)
	if err != nil {
		return model.UiNode{}, err
	}
	doc, err := uixml.Decode(out)
	if err != nil {
		return model.UiNode{}, &BridgeError{Op: "ui dump", Serial: serial, Err: err}
	}
	return model.NormalizeDocument(doc), nil
}

func describeQuery(q model.Query) string {
	var parts []string
	if q.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", q.Text))
	}
	if q.ContentDesc != "" {
		parts = append(parts, fmt.Sprintf("contentDesc=%q", q.ContentDesc))
	}
	return strings.Join(parts, " or ")
}
