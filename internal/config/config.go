package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mabhi256/vardig/utils"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by the renderer selection
const (
	OutputAuto = "auto"
	OutputCLI  = "cli"
	OutputTUI  = "tui"
	OutputHTML = "html"
)

var ValidOutputs = []string{OutputAuto, OutputCLI, OutputTUI, OutputHTML}

// Config holds every setting the analysis core and the renderers read.
// The core never writes to it.
type Config struct {
	// Visibility tiers
	AnalyseProtected        bool `yaml:"analyse_protected"`
	AnalysePrivate          bool `yaml:"analyse_private"`
	AnalyseProtectedMethods bool `yaml:"analyse_protected_methods"`
	AnalysePrivateMethods   bool `yaml:"analyse_private_methods"`

	// Optional analysis steps
	AnalyseConstants   bool `yaml:"analyse_constants"`
	AnalyseGetter      bool `yaml:"analyse_getter"`
	AnalyseTraversable bool `yaml:"analyse_traversable"`
	AnalyseMethods     bool `yaml:"analyse_methods"`

	// Emergency limits
	MaxNesting          int              `yaml:"max_nesting"`
	MaxCall             int              `yaml:"max_call"`
	MaxRuntime          time.Duration    `yaml:"max_runtime"`
	MemoryBudget        utils.MemorySize `yaml:"memory_budget"`
	MemoryCheckInterval int              `yaml:"memory_check_interval"`

	// Size limits
	ArrayCountLimit int `yaml:"array_count_limit"`
	IterationLimit  int `yaml:"iteration_limit"`
	StringPreview   int `yaml:"string_preview"`

	// Pollers
	GetterPrefix     string `yaml:"getter_prefix"`
	DebugMethods     string `yaml:"debug_methods"`
	DebugMethodsDeny string `yaml:"debug_methods_deny"`
	IteratorMethods  string `yaml:"iterator_methods"`

	// Source index for comments, constants and unexported methods
	LoadSource bool   `yaml:"load_source"`
	SourceDir  string `yaml:"source_dir"`

	// Output
	Output    string           `yaml:"output"`
	OutputDir string           `yaml:"output_dir"`
	ChunkSize utils.MemorySize `yaml:"chunk_size"`
	ChunkDir  string           `yaml:"chunk_dir"`
	Disabled  bool             `yaml:"disabled"`

	// Debug configuration
	Debug        bool   `yaml:"debug"`
	DebugLogFile string `yaml:"debug_log_file"`
}

// Default returns the configuration used when no file or flag overrides anything
func Default() *Config {
	return &Config{
		AnalyseProtected:        false,
		AnalysePrivate:          false,
		AnalyseProtectedMethods: false,
		AnalysePrivateMethods:   false,

		AnalyseConstants:   true,
		AnalyseGetter:      true,
		AnalyseTraversable: true,
		AnalyseMethods:     true,

		MaxNesting:          5,
		MaxCall:             10,
		MaxRuntime:          60 * time.Second,
		MemoryBudget:        64 * utils.MB,
		MemoryCheckInterval: 64,

		ArrayCountLimit: 300,
		IterationLimit:  1000,
		StringPreview:   50,

		GetterPrefix:     "Get",
		DebugMethods:     "String,GoString,Error,DebugInfo",
		DebugMethodsDeny: "*bytes.Buffer.String,*strings.Builder.String",
		IteratorMethods:  "All",

		LoadSource: false,

		Output:    OutputAuto,
		ChunkSize: 64 * utils.KB,
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate ensures the limits make sense
func (c *Config) Validate() error {
	if c.MaxNesting < 1 {
		return fmt.Errorf("max_nesting must be at least 1, got %d", c.MaxNesting)
	}
	if c.MaxCall < 1 {
		return fmt.Errorf("max_call must be at least 1, got %d", c.MaxCall)
	}
	if c.MaxRuntime <= 0 {
		return fmt.Errorf("max_runtime must be positive, got %v", c.MaxRuntime)
	}
	if c.MemoryBudget <= 0 {
		return fmt.Errorf("memory_budget must be positive, got %s", c.MemoryBudget)
	}
	if c.ArrayCountLimit < 1 {
		return fmt.Errorf("array_count_limit must be at least 1, got %d", c.ArrayCountLimit)
	}
	if c.IterationLimit < 1 {
		return fmt.Errorf("iteration_limit must be at least 1, got %d", c.IterationLimit)
	}
	if !slices.Contains(ValidOutputs, c.Output) {
		return fmt.Errorf("invalid output format: %s. Valid options: %v", c.Output, ValidOutputs)
	}
	return nil
}

// Clone returns an independent copy
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// DebugMethodList splits the configured debug method names
func (c *Config) DebugMethodList() []string {
	return splitCSV(c.DebugMethods)
}

// IteratorMethodList splits the configured iterator method names
func (c *Config) IteratorMethodList() []string {
	return splitCSV(c.IteratorMethods)
}

// IsDebugMethodDenied reports whether typeName.method is on the deny list.
// Entries are written as "<type>.<method>", for example "*bytes.Buffer.String".
func (c *Config) IsDebugMethodDenied(typeName, method string) bool {
	want := typeName + "." + method
	return slices.Contains(splitCSV(c.DebugMethodsDeny), want)
}

// String returns the effective configuration as YAML
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
