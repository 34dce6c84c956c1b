// Package manifest handles tapeworm.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "tapeworm.toml"

// SourceExts are the file extensions collected from source directories.
var SourceExts = []string{".bf", ".b"}

// Manifest represents a tapeworm.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Source  Source        `toml:"source"`
	Compile CompileConfig `toml:"compile"`
	VM      VMConfig      `toml:"vm"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`

	// Dir is the directory containing the tapeworm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs []string `toml:"dirs"`
}

// CompileConfig selects optimization passes and the build backend.
type CompileConfig struct {
	Passes  []string `toml:"passes"`
	Backend string   `toml:"backend"`
	Output  string   `toml:"output"`
}

// VMConfig configures program execution.
type VMConfig struct {
	TapeSize  int    `toml:"tape-size"`
	StepLimit uint64 `toml:"step-limit"`
}

// CacheConfig configures the compiled program cache.
type CacheConfig struct {
	Path    string `toml:"path"`
	Enabled *bool  `toml:"enabled"`
}

// LogConfig configures log verbosity (0 notice, 1 info, 2 debug).
type LogConfig struct {
	Verbosity int `toml:"verbosity"`
}

// Default returns the configuration used when no manifest exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if len(m.Compile.Passes) == 0 {
		m.Compile.Passes = []string{"coalesce", "fuse", "zero"}
	}
	if m.Compile.Backend == "" {
		m.Compile.Backend = "c"
	}
	if m.Compile.Output == "" {
		m.Compile.Output = "build"
	}
	if m.VM.TapeSize == 0 {
		m.VM.TapeSize = 30000
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".tapeworm", "cache.db")
	}
}

// Load parses a tapeworm.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if m.VM.TapeSize < 0 {
		return nil, fmt.Errorf("%s: vm.tape-size must not be negative", path)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a tapeworm.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// CacheEnabled reports whether the program cache should be used. It
// defaults to true.
func (m *Manifest) CacheEnabled() bool {
	return m.Cache.Enabled == nil || *m.Cache.Enabled
}

// Passes returns the configured pass list in the comma-separated form
// accepted by optimizer.ParsePasses.
func (m *Manifest) Passes() string {
	return strings.Join(m.Compile.Passes, ",")
}

// resolve makes p absolute relative to the manifest directory.
func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// CachePath returns the absolute cache database path.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

// OutputDir returns the absolute build output directory.
func (m *Manifest) OutputDir() string {
	return m.resolve(m.Compile.Output)
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, m.resolve(d))
	}
	return paths
}

// SourceFiles returns every program file under the source directories,
// sorted. Missing directories are skipped.
func (m *Manifest) SourceFiles() ([]string, error) {
	var files []string
	for _, dir := range m.SourceDirPaths() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && slices.Contains(SourceExts, filepath.Ext(path)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}
	slices.Sort(files)
	return files, nil
}
