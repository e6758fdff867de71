package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames are searched, in order, in every directory while walking
// up from the starting directory.
var ConfigFileNames = []string{"vela.yaml", "vela.yml", "vela.toml"}

// Settings controls the compiler and VM. A vela.yaml looks like:
//
//	stack_max: 512
//	trace_execution: false
//	print_code: true
//	log:
//	  verbosity: 4
//	  file: vela.log
type Settings struct {
	// StackMax is the fixed operand stack capacity.
	StackMax int `yaml:"stack_max" toml:"stack_max"`

	// TraceExecution prints the stack and each instruction before it runs.
	TraceExecution bool `yaml:"trace_execution" toml:"trace_execution"`

	// PrintCode logs the disassembly of every successfully compiled chunk.
	PrintCode bool `yaml:"print_code" toml:"print_code"`

	Log LogSettings `yaml:"log" toml:"log"`

	// Path is the file the settings were read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// LogSettings configures commonlog.
type LogSettings struct {
	// Verbosity is handed to commonlog: 0 errors, 1 warnings, 2 notices,
	// 3 info, 4 and above debug.
	Verbosity int `yaml:"verbosity" toml:"verbosity"`

	// File is the log destination; empty means stderr.
	File string `yaml:"file" toml:"file"`
}

// Default returns the settings used when no configuration file exists.
func Default() *Settings {
	return &Settings{StackMax: DefaultStackMax}
}

// Load reads settings from path. The format is chosen by extension:
// .toml is TOML, anything else is YAML.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes settings from data. path selects the format and is used in
// error messages.
func Parse(data []byte, path string) (*Settings, error) {
	s := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

func (s *Settings) validate(path string) error {
	if s.StackMax == 0 {
		s.StackMax = DefaultStackMax
	}
	if s.StackMax < 0 {
		return fmt.Errorf("%s: stack_max must be positive, got %d", path, s.StackMax)
	}
	if s.Log.Verbosity < 0 {
		return fmt.Errorf("%s: log.verbosity must not be negative, got %d", path, s.Log.Verbosity)
	}
	return nil
}

// FindConfig walks up from dir looking for a configuration file.
// It returns an empty path and nil error when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve picks the settings for a run: an explicit path wins, then
// $VELA_CONFIG, then the nearest configuration file above dir, then the
// defaults. $VELA_TRACE=1 forces execution tracing.
func Resolve(explicit, dir string) (*Settings, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		found, err := FindConfig(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	s := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	if os.Getenv(EnvTrace) == "1" {
		s.TraceExecution = true
	}
	return s, nil
}
