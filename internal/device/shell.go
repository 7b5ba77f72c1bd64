package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/sirupsen/logrus"
)

var (
	languagePattern = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]{2,8})*$`)
	parameterValue  = regexp.MustCompile(`^[A-Za-z0-9._:/@%+=,-]*$`)
	parameterName   = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// ShellOptions configure the shell binding.
type ShellOptions struct {
	Serial string
	// Address is attached before use when set, e.g. "192.168.1.20:5555".
	Address        string
	AttachRetries  int
	AttachInterval time.Duration
}

// Shell drives a device through a command-line debug transport. Every
// device-specific detail comes from its Table; capabilities the table has no
// command for fall back to Unimplemented.
type Shell struct {
	Unimplemented

	runner Runner
	table  *Table
	opts   ShellOptions
	now    func() time.Time
	log    *log.Logger
}

var _ Device = (*Shell)(nil)

// NewShell creates a binding that runs commands through runner.
func NewShell(runner Runner, table *Table, opts ShellOptions, logger *log.Logger) *Shell {
	if opts.AttachRetries < 1 {
		opts.AttachRetries = 1
	}
	if opts.AttachInterval <= 0 {
		opts.AttachInterval = 500 * time.Millisecond
	}
	return &Shell{runner: runner, table: table, opts: opts, now: time.Now, log: logger}
}

// Table returns the platform table in use.
func (s *Shell) Table() *Table {
	return s.table
}

// Attach connects the transport to a network target, retrying with
// exponential backoff. It is a no-op without an address.
func (s *Shell) Attach(ctx context.Context) error {
	if s.opts.Address == "" {
		return nil
	}
	if !s.table.Has(CmdAttach) {
		return message.Unimplemented("attach")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.AttachInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.opts.AttachRetries-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		out, err := s.run(ctx, CmdAttach, map[string]string{"address": s.opts.Address})
		if err == nil && !strings.Contains(strings.ToLower(out), "connected to") {
			err = fmt.Errorf("attach %s: %s", s.opts.Address, strings.TrimSpace(out))
		}
		if err != nil {
			s.log.WarnWithFields(logrus.Fields{"address": s.opts.Address, "attempt": attempt}, "Device attach failed: %v", err)
		}
		return err
	}

	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("failed to attach %s after %d attempts: %w", s.opts.Address, attempt, err)
	}
	s.log.InfoWithFields(logrus.Fields{"address": s.opts.Address}, "Device attached")
	return nil
}

// run executes command name, which must exist in the table.
func (s *Shell) run(ctx context.Context, name string, vars map[string]string) (string, error) {
	args, ok := s.table.Command(name, vars)
	if !ok {
		return "", message.Unimplemented(name)
	}
	s.log.TraceWithFields(logrus.Fields{"command": name, "args": args}, "Running device command")
	out, err := s.runner.Run(ctx, args...)
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// ListApplications returns the catalogue entries installed on the device.
// Without a package listing command the whole catalogue is returned.
func (s *Shell) ListApplications(ctx context.Context) ([]Application, error) {
	catalogue := s.table.Applications()
	if !s.table.Has(CmdListPackages) {
		return catalogue, nil
	}

	out, err := s.run(ctx, CmdListPackages, nil)
	if err != nil {
		return nil, err
	}
	installed := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		installed[strings.TrimPrefix(line, "package:")] = struct{}{}
	}

	apps := make([]Application, 0, len(catalogue))
	for _, app := range catalogue {
		pkg, _ := s.table.Package(app.AppID)
		if _, ok := installed[pkg]; ok {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// LaunchApplication starts appID. Parameters need a launch-parameter
// command in the table.
func (s *Shell) LaunchApplication(ctx context.Context, appID string, params map[string]string) error {
	if !s.table.Has(CmdLaunch) {
		return s.Unimplemented.LaunchApplication(ctx, appID, params)
	}
	pkg, err := s.table.Package(appID)
	if err != nil {
		return err
	}
	args, _ := s.table.Command(CmdLaunch, map[string]string{"package": pkg})

	if len(params) > 0 {
		if !s.table.Has(CmdLaunchParam) {
			return message.Unimplemented("launch parameters")
		}
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value := params[name]
			if !parameterName.MatchString(name) || !parameterValue.MatchString(value) {
				return message.Validation("invalid launch parameter %q", name)
			}
			extra, _ := s.table.Command(CmdLaunchParam, map[string]string{"name": name, "value": value})
			args = append(args, extra...)
		}
	}

	if _, err := s.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("%s: %w", CmdLaunch, err)
	}
	return nil
}

// ExitApplication force-stops appID.
func (s *Shell) ExitApplication(ctx context.Context, appID string) error {
	if !s.table.Has(CmdExit) {
		return s.Unimplemented.ExitApplication(ctx, appID)
	}
	pkg, err := s.table.Package(appID)
	if err != nil {
		return err
	}
	_, err = s.run(ctx, CmdExit, map[string]string{"package": pkg})
	return err
}

// ApplicationState reports whether appID has a running process.
func (s *Shell) ApplicationState(ctx context.Context, appID string) (AppState, error) {
	if !s.table.Has(CmdPID) {
		return s.Unimplemented.ApplicationState(ctx, appID)
	}
	pkg, err := s.table.Package(appID)
	if err != nil {
		return "", err
	}
	pid, err := s.pid(ctx, pkg)
	if err != nil {
		return "", err
	}
	if pid == "" {
		return StateStopped, nil
	}
	return StateRunning, nil
}

// pid returns the first process id of pkg, empty when it is not running.
func (s *Shell) pid(ctx context.Context, pkg string) (string, error) {
	out, err := s.run(ctx, CmdPID, map[string]string{"package": pkg})
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == 1 {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", nil
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return "", fmt.Errorf("%s: unexpected output %q", CmdPID, strings.TrimSpace(out))
	}
	return fields[0], nil
}

// Restart reboots the device.
func (s *Shell) Restart(ctx context.Context) error {
	if !s.table.Has(CmdRestart) {
		return s.Unimplemented.Restart(ctx)
	}
	_, err := s.run(ctx, CmdRestart, nil)
	return err
}

// PressKey sends a short key press.
func (s *Shell) PressKey(ctx context.Context, key Key) error {
	if !s.table.Has(CmdKey) {
		return s.Unimplemented.PressKey(ctx, key)
	}
	code, err := s.table.KeyCode(key)
	if err != nil {
		return err
	}
	_, err = s.run(ctx, CmdKey, map[string]string{"code": code})
	return err
}

// LongPressKey holds key for d.
func (s *Shell) LongPressKey(ctx context.Context, key Key, d time.Duration) error {
	if !s.table.Has(CmdLongPress) {
		return s.Unimplemented.LongPressKey(ctx, key, d)
	}
	code, err := s.table.KeyCode(key)
	if err != nil {
		return err
	}
	_, err = s.run(ctx, CmdLongPress, map[string]string{
		"code":     code,
		"duration": strconv.FormatInt(d.Milliseconds(), 10),
	})
	return err
}

// SetLanguage sets the system locale, e.g. "en-US".
func (s *Shell) SetLanguage(ctx context.Context, language string) error {
	if !s.table.Has(CmdSetLanguage) {
		return s.Unimplemented.SetLanguage(ctx, language)
	}
	if !languagePattern.MatchString(language) {
		return message.Validation("invalid language %q", language)
	}
	_, err := s.run(ctx, CmdSetLanguage, map[string]string{"language": language})
	return err
}

// Language returns the system locale.
func (s *Shell) Language(ctx context.Context) (string, error) {
	if !s.table.Has(CmdGetLanguage) {
		return s.Unimplemented.Language(ctx)
	}
	out, err := s.run(ctx, CmdGetLanguage, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DeviceMetrics samples memory and load figures.
func (s *Shell) DeviceMetrics(ctx context.Context) (Sample, error) {
	if !s.table.Has(CmdMemInfo) && !s.table.Has(CmdLoadAvg) {
		return s.Unimplemented.DeviceMetrics(ctx)
	}
	sample := Sample{"timestamp": s.now().UnixMilli()}

	if s.table.Has(CmdMemInfo) {
		out, err := s.run(ctx, CmdMemInfo, nil)
		if err != nil {
			return nil, err
		}
		mem := parseKeyValues(out)
		for field, name := range map[string]string{
			"memTotalKb":     "MemTotal",
			"memFreeKb":      "MemFree",
			"memAvailableKb": "MemAvailable",
		} {
			if v, ok := mem[name]; ok {
				sample[field] = v
			}
		}
	}

	if s.table.Has(CmdLoadAvg) {
		out, err := s.run(ctx, CmdLoadAvg, nil)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(out)
		for i, name := range []string{"load1", "load5", "load15"} {
			if i >= len(fields) {
				break
			}
			if v, err := strconv.ParseFloat(fields[i], 64); err == nil {
				sample[name] = v
			}
		}
	}

	return sample, nil
}

// ApplicationMetrics samples the process of appID.
func (s *Shell) ApplicationMetrics(ctx context.Context, appID string) (Sample, error) {
	if !s.table.Has(CmdPID) {
		return s.Unimplemented.ApplicationMetrics(ctx, appID)
	}
	pkg, err := s.table.Package(appID)
	if err != nil {
		return nil, err
	}
	pid, err := s.pid(ctx, pkg)
	if err != nil {
		return nil, err
	}

	sample := Sample{"timestamp": s.now().UnixMilli(), "appId": appID, "running": pid != ""}
	if pid == "" || !s.table.Has(CmdProcessStatus) {
		return sample, nil
	}
	sample["pid"], _ = strconv.Atoi(pid)

	out, err := s.run(ctx, CmdProcessStatus, map[string]string{"pid": pid})
	if err != nil {
		return nil, err
	}
	status := parseKeyValues(out)
	if v, ok := status["VmRSS"]; ok {
		sample["rssKb"] = v
	}
	if v, ok := status["Threads"]; ok {
		sample["threads"] = v
	}
	return sample, nil
}

// Health checks the transport state.
func (s *Shell) Health(ctx context.Context) (Health, error) {
	if !s.table.Has(CmdState) {
		return s.Unimplemented.Health(ctx)
	}
	h := Health{Healthy: true, Checks: map[string]string{}}

	out, err := s.run(ctx, CmdState, nil)
	switch state := strings.TrimSpace(out); {
	case err != nil:
		h.Checks["transport"] = err.Error()
	case state != "device":
		h.Checks["transport"] = "state " + state
	default:
		h.Checks["transport"] = "ok"
	}

	for _, check := range h.Checks {
		if check != "ok" {
			h.Healthy = false
		}
	}
	return h, nil
}

// Info reads the device identity from its properties.
func (s *Shell) Info(ctx context.Context) (Info, error) {
	info := Info{Platform: s.table.Platform(), Serial: s.opts.Serial}
	if !s.table.Has(CmdGetProperty) {
		return info, nil
	}

	for name, dst := range map[string]*string{
		"manufacturer": &info.Manufacturer,
		"model":        &info.Model,
		"osVersion":    &info.OSVersion,
	} {
		prop, ok := s.table.Property(name)
		if !ok {
			continue
		}
		out, err := s.run(ctx, CmdGetProperty, map[string]string{"property": prop})
		if err != nil {
			return Info{}, err
		}
		*dst = strings.TrimSpace(out)
	}
	return info, nil
}

// parseKeyValues reads "Name:   123 kB" lines into integers.
func parseKeyValues(out string) map[string]int64 {
	values := make(map[string]int64)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		if v, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
			values[strings.TrimSpace(name)] = v
		}
	}
	return values
}
