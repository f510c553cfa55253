package normalize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-directory overlay read by LoadFile.
const ConfigFile = "normalize.yaml"

// Config describes the tool module a process works on. It is built once at
// process start from the command line and passed explicitly into the
// extractor, the runner and the emitter; none of them reads ambient process
// state.
type Config struct {
	ModulePath string // tool path relative to the working directory
	ModuleDir  string // directory part of ModulePath, "" for the working directory
	ModuleFile string // file part of ModulePath
	ModuleName string // ModuleFile without its extension
	ModuleExt  string // extension of ModuleFile, including the dot
	WorkName   string // base name of the working directory
	Argv       []string

	BuildDir string        // where bringup artifacts go, "build/" by default
	Pip      string        // overrides the installer invocation prefix
	Timeout  time.Duration // command example time budget
}

// NewConfig derives the module configuration from a command line, argv[0]
// being the tool itself.
func NewConfig(argv []string) (*Config, error) {
	if len(argv) == 0 {
		return nil, errors.New("config: empty command line")
	}
	abs, err := filepath.Abs(argv[0])
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)
	dir, file := path.Split(rel)
	ext := path.Ext(file)
	return &Config{
		ModulePath: rel,
		ModuleDir:  strings.TrimSuffix(dir, "/"),
		ModuleFile: file,
		ModuleName: strings.TrimSuffix(file, ext),
		ModuleExt:  ext,
		WorkName:   filepath.Base(cwd),
		Argv:       argv,
		BuildDir:   "build/",
		Timeout:    DefaultTimeout,
	}, nil
}

type fileConfig struct {
	Timeout  int    `yaml:"timeout"`   // seconds
	BuildDir string `yaml:"build-dir"` // replaces "build/"
	Pip      string `yaml:"pip"`       // replaces the installer prefix
}

// LoadFile overlays c with values from a YAML file. A missing file is not an
// error, the configuration simply keeps its defaults.
func (c *Config) LoadFile(name string) error {
	text, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(text, &fc); err != nil {
		return fmt.Errorf("config %s: %w", name, err)
	}
	if fc.Timeout > 0 {
		c.Timeout = time.Duration(fc.Timeout) * time.Second
	}
	if fc.BuildDir != "" {
		c.BuildDir = strings.TrimSuffix(fc.BuildDir, "/") + "/"
	}
	if fc.Pip != "" {
		c.Pip = fc.Pip
	}
	return nil
}

// Value returns the configuration value named by key, for the -c inspection
// option. Unknown keys are an error.
func (c *Config) Value(key string) (string, error) {
	switch key {
	case "module.path":
		return c.ModulePath, nil
	case "module.dir":
		return c.ModuleDir, nil
	case "module.file":
		return c.ModuleFile, nil
	case "module.name":
		return c.ModuleName, nil
	case "module.ext":
		return c.ModuleExt, nil
	case "work.name":
		return c.WorkName, nil
	case "build.dir":
		return c.BuildDir, nil
	case "pip":
		return c.Pip, nil
	case "timeout":
		return c.Timeout.String(), nil
	}
	return "", fmt.Errorf("config: unknown key '%s'", key)
}
