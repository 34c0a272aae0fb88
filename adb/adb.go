// Package adb drives the adb binary to capture screenshots and inject
// key events on a connected Android device.
package adb

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Key codes used by the capture loop.
const (
	KeyVolumeDown = 25
	KeyVolumeUp   = 24
)

// deviceFile is where screencap writes on the device before the pull.
const deviceFile = "/sdcard/screenshot.png"

// DeviceError is a typed failure of one adb invocation, carrying the
// subcommand and whatever the binary printed to stderr.
type DeviceError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("adb %s: %v: %s", e.Op, e.Err, e.Stderr)
	}
	return fmt.Sprintf("adb %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// runner abstracts command execution so tests can fake the binary.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &DeviceError{
			Op:     args[0],
			Stderr: string(bytes.TrimSpace(stderr.Bytes())),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// Client issues adb commands against a single device.
type Client struct {
	path   string
	serial string
	logger *slog.Logger
	run    runner
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithPath overrides the adb binary location. Default: "adb" on PATH.
func WithPath(path string) Option { return func(c *Client) { c.path = path } }

// WithSerial targets a specific device when more than one is attached.
func WithSerial(serial string) Option { return func(c *Client) { c.serial = serial } }

// WithLogger sets the logger for command-level debug output.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

func withRunner(r runner) Option { return func(c *Client) { c.run = r } }

func withClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New returns a Client. No device communication happens until Probe or
// the first operation.
func New(opts ...Option) *Client {
	c := &Client{
		path:   "adb",
		logger: slog.Default(),
		run:    execRunner,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) exec(ctx context.Context, args ...string) ([]byte, error) {
	if c.serial != "" {
		args = append([]string{"-s", c.serial}, args...)
	}
	c.logger.Debug("adb exec", "args", args)
	return c.run(ctx, c.path, args...)
}

// Probe verifies that the adb binary is installed and runnable.
func (c *Client) Probe(ctx context.Context) error {
	if _, err := c.exec(ctx, "version"); err != nil {
		return errors.Wrap(err, "adb is not installed or not on PATH")
	}
	return nil
}

// Screencap takes a screenshot on the device and pulls it into dir as
// screenshot_<timestamp>.png, removing the device-side copy afterwards.
// Returns the local file path.
func (c *Client) Screencap(ctx context.Context, dir string) (string, error) {
	if _, err := c.exec(ctx, "shell", "screencap", "-p", deviceFile); err != nil {
		return "", err
	}

	stamp := c.now().Format("20060102_150405")
	local := filepath.Join(dir, "screenshot_"+stamp+".png")
	if _, err := c.exec(ctx, "pull", deviceFile, local); err != nil {
		return "", err
	}

	if _, err := c.exec(ctx, "shell", "rm", deviceFile); err != nil {
		return "", err
	}
	c.logger.Info("screenshot saved", "path", local)
	return local, nil
}

// KeyEvent injects a key press on the device.
func (c *Client) KeyEvent(ctx context.Context, code int) error {
	_, err := c.exec(ctx, "shell", "input", "keyevent", strconv.Itoa(code))
	return err
}
