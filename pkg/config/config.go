// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/walteh/sd-rg/pkg/engine"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfig names an explicit config file.
	EnvConfig = "SD_RG_CONFIG"
	// EnvEngine overrides the engine binary.
	EnvEngine = "SD_RG_ENGINE"
	// EnvDebug turns on debug diagnostics.
	EnvDebug = "SD_RG_DEBUG"

	DefaultEngine       = engine.DefaultBinary
	DefaultPreviewLines = 100
)

// DefaultFiles are looked for in the working directory, in order.
var DefaultFiles = []string{".sd-rg.yaml", ".sd-rg.yml", ".sd-rg.hcl"}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config holds the user's defaults
type Config struct {
	Engine       string   `yaml:"engine" hcl:"engine,optional"`
	PreviewLines int      `yaml:"preview_lines" hcl:"preview_lines,optional"`
	Protect      []string `yaml:"protect" hcl:"protect,optional"`
	Debug        bool     `yaml:"debug" hcl:"debug,optional"`
}

// Env looks up an environment variable; os.Getenv satisfies it.
type Env func(key string) string

// 🏭 Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Engine:       DefaultEngine,
		PreviewLines: DefaultPreviewLines,
	}
}

// 🎯 Discover finds and loads the config for a run started in wd, then applies env overrides
func Discover(ctx context.Context, wd string, getenv Env) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	cfg := Default()

	path := getenv(EnvConfig)
	if path == "" {
		for _, name := range DefaultFiles {
			candidate := filepath.Join(wd, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		loaded, err := Load(ctx, path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		logger.Debug().Msg("no config file found, using defaults")
	}

	cfg.ApplyEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with the environment.
func (cfg *Config) ApplyEnv(getenv Env) {
	if engine := getenv(EnvEngine); engine != "" {
		cfg.Engine = engine
	}
	if isTruthy(getenv(EnvDebug)) {
		cfg.Debug = true
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// 🔍 Validate fills in defaults and checks values
func (cfg *Config) Validate() error {
	if cfg.Engine == "" {
		cfg.Engine = DefaultEngine
	}
	if cfg.PreviewLines == 0 {
		cfg.PreviewLines = DefaultPreviewLines
	}
	if cfg.PreviewLines < 0 {
		return errors.Errorf("preview_lines must be positive, got %d", cfg.PreviewLines)
	}

	for i, pattern := range cfg.Protect {
		if pattern == "" {
			return errors.Errorf("protect[%d]: pattern is empty", i)
		}
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("protect[%d]: invalid glob %q", i, pattern)
		}
	}

	return nil
}

// IsProtected reports whether path matches one of the protect globs. Globs are
// relative to the working directory: absolute paths under it are made
// relative first, and every path is compared slash separated, cleaned and
// without a leading "./".
func (cfg *Config) IsProtected(path string) bool {
	name := filepath.ToSlash(relativeToWorkingDir(path))
	for _, pattern := range cfg.Protect {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// relativeToWorkingDir returns path relative to the process working directory
// when it lies under it, and the cleaned path otherwise.
func relativeToWorkingDir(path string) string {
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("engine=%s preview_lines=%d protect=%v debug=%t", cfg.Engine, cfg.PreviewLines, cfg.Protect, cfg.Debug)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		// an empty document is a valid, empty config
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}
