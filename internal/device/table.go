package device

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/ibs-source/rc-bridge/internal/message"
	"gopkg.in/yaml.v3"
)

//go:embed profiles/android-tv.yaml
var defaultProfile []byte

// Command template names understood by the shell binding.
const (
	CmdAttach        = "attach"
	CmdState         = "state"
	CmdListPackages  = "list-packages"
	CmdLaunch        = "launch"
	CmdLaunchParam   = "launch-parameter"
	CmdExit          = "exit"
	CmdPID           = "pid"
	CmdRestart       = "restart"
	CmdKey           = "key"
	CmdLongPress     = "long-press"
	CmdSetLanguage   = "set-language"
	CmdGetLanguage   = "get-language"
	CmdGetProperty   = "get-property"
	CmdMemInfo       = "meminfo"
	CmdLoadAvg       = "loadavg"
	CmdProcessStatus = "process-status"
)

var knownCommands = map[string]struct{}{
	CmdAttach: {}, CmdState: {}, CmdListPackages: {}, CmdLaunch: {}, CmdLaunchParam: {},
	CmdExit: {}, CmdPID: {}, CmdRestart: {}, CmdKey: {}, CmdLongPress: {},
	CmdSetLanguage: {}, CmdGetLanguage: {}, CmdGetProperty: {},
	CmdMemInfo: {}, CmdLoadAvg: {}, CmdProcessStatus: {},
}

var knownPlaceholders = map[string]struct{}{
	"code": {}, "package": {}, "language": {}, "duration": {}, "address": {},
	"property": {}, "pid": {}, "name": {}, "value": {},
}

var placeholder = regexp.MustCompile(`\{([a-z]+)\}`)

type tableFile struct {
	Platform     string              `yaml:"platform"`
	Keys         map[string]string   `yaml:"keys"`
	Applications map[string]string   `yaml:"applications"`
	Properties   map[string]string   `yaml:"properties"`
	Commands     map[string][]string `yaml:"commands"`
}

// Table is the platform mapping from logical identifiers to device-native
// values. It is built once and never modified, so lookups are safe from any
// goroutine.
type Table struct {
	platform   string
	keys       map[Key]string
	apps       map[string]string
	properties map[string]string
	commands   map[string][]string
}

// DefaultTable returns the embedded Android TV table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultProfile)
}

// LoadTable reads a table from path, or the embedded default when path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device profile: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTable decodes and validates a YAML table.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse device profile: %w", err)
	}
	if f.Platform == "" {
		return nil, fmt.Errorf("device profile: platform is required")
	}

	t := &Table{
		platform:   f.Platform,
		keys:       make(map[Key]string, len(f.Keys)),
		apps:       make(map[string]string, len(f.Applications)),
		properties: make(map[string]string, len(f.Properties)),
		commands:   make(map[string][]string, len(f.Commands)),
	}

	for name, code := range f.Keys {
		k, err := ParseKey(name)
		if err != nil {
			return nil, fmt.Errorf("device profile: %w", err)
		}
		if code == "" {
			return nil, fmt.Errorf("device profile: key %q has no code", name)
		}
		t.keys[k] = code
	}

	for appID, pkg := range f.Applications {
		if appID == "" || pkg == "" {
			return nil, fmt.Errorf("device profile: application entries need an id and a package")
		}
		t.apps[appID] = pkg
	}

	for name, prop := range f.Properties {
		t.properties[name] = prop
	}

	for name, args := range f.Commands {
		if _, ok := knownCommands[name]; !ok {
			return nil, fmt.Errorf("device profile: unknown command %q", name)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("device profile: command %q is empty", name)
		}
		for _, arg := range args {
			for _, m := range placeholder.FindAllStringSubmatch(arg, -1) {
				if _, ok := knownPlaceholders[m[1]]; !ok {
					return nil, fmt.Errorf("device profile: command %q uses unknown placeholder %s", name, m[0])
				}
			}
		}
		t.commands[name] = append([]string(nil), args...)
	}

	return t, nil
}

// Platform returns the platform name.
func (t *Table) Platform() string {
	return t.platform
}

// KeyCode returns the native code of k.
func (t *Table) KeyCode(k Key) (string, error) {
	code, ok := t.keys[k]
	if !ok {
		return "", message.NotFound("key %q is not available on %s", k, t.platform)
	}
	return code, nil
}

// Package returns the native package of appID.
func (t *Table) Package(appID string) (string, error) {
	if appID == "" {
		return "", message.Validation("appId is required")
	}
	pkg, ok := t.apps[appID]
	if !ok {
		return "", message.NotFound("unknown application %q", appID)
	}
	return pkg, nil
}

// Applications returns the catalogue sorted by id.
func (t *Table) Applications() []Application {
	out := make([]Application, 0, len(t.apps))
	for id := range t.apps {
		out = append(out, Application{AppID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out
}

// Property returns the native property backing an Info field.
func (t *Table) Property(name string) (string, bool) {
	p, ok := t.properties[name]
	return p, ok
}

// Has reports whether the table defines command name.
func (t *Table) Has(name string) bool {
	_, ok := t.commands[name]
	return ok
}

// Command returns the arguments of command name with placeholders filled
// from vars. Placeholders without a value expand to the empty string.
func (t *Table) Command(name string, vars map[string]string) ([]string, bool) {
	tmpl, ok := t.commands[name]
	if !ok {
		return nil, false
	}
	args := make([]string, len(tmpl))
	for i, arg := range tmpl {
		args[i] = placeholder.ReplaceAllStringFunc(arg, func(m string) string {
			return vars[m[1:len(m)-1]]
		})
	}
	return args, true
}
