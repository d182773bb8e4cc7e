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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func envMap(m map[string]string) Env {
	return func(key string) string { return m[key] }
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: ".sd-rg.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: ".sd-rg.yml", want: &YAMLParser{}},
		{name: "hcl_file", filename: ".sd-rg.hcl", want: &HCLParser{}},
		{name: "unknown_extension", filename: ".sd-rg.toml", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		want        *Config
		errContains string
	}{
		{
			name:     "yaml_full",
			filename: "c.yaml",
			content: `
engine: /usr/local/bin/rg
preview_lines: 20
protect:
  - "**/*.lock"
  - "vendor/**"
debug: true
`,
			want: &Config{
				Engine:       "/usr/local/bin/rg",
				PreviewLines: 20,
				Protect:      []string{"**/*.lock", "vendor/**"},
				Debug:        true,
			},
		},
		{
			name:     "yaml_defaults_filled",
			filename: "c.yml",
			content:  "debug: false\n",
			want:     &Config{Engine: DefaultEngine, PreviewLines: DefaultPreviewLines},
		},
		{
			name:     "yaml_empty_document",
			filename: "c.yaml",
			content:  "",
			want:     &Config{Engine: DefaultEngine, PreviewLines: DefaultPreviewLines},
		},
		{
			name:        "yaml_unknown_field",
			filename:    "c.yaml",
			content:     "colour: always\n",
			errContains: "parsing YAML",
		},
		{
			name:     "hcl_full",
			filename: "c.hcl",
			content: `
engine        = "rg"
preview_lines = 5
protect       = ["go.sum"]
`,
			want: &Config{Engine: "rg", PreviewLines: 5, Protect: []string{"go.sum"}},
		},
		{
			name:        "hcl_syntax_error",
			filename:    "c.hcl",
			content:     `engine = `,
			errContains: "parsing HCL",
		},
		{
			name:        "negative_preview_lines",
			filename:    "c.yaml",
			content:     "preview_lines: -1\n",
			errContains: "preview_lines must be positive",
		},
		{
			name:        "invalid_glob",
			filename:    "c.yaml",
			content:     "protect: ['[abc']\n",
			errContains: "invalid glob",
		},
		{
			name:        "unknown_extension",
			filename:    "c.json",
			content:     "{}",
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := Load(testContext(t), path)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestDiscover(t *testing.T) {
	t.Run("no_file_uses_defaults", func(t *testing.T) {
		cfg, err := Discover(testContext(t), t.TempDir(), envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("working_directory_file", func(t *testing.T) {
		wd := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(wd, ".sd-rg.hcl"), []byte("preview_lines = 7\n"), 0644))

		cfg, err := Discover(testContext(t), wd, envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.PreviewLines)
	})

	t.Run("yaml_wins_over_hcl", func(t *testing.T) {
		wd := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(wd, ".sd-rg.yaml"), []byte("preview_lines: 3\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(wd, ".sd-rg.hcl"), []byte("preview_lines = 7\n"), 0644))

		cfg, err := Discover(testContext(t), wd, envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.PreviewLines)
	})

	t.Run("env_file_and_overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("engine: from-file\n"), 0644))

		cfg, err := Discover(testContext(t), t.TempDir(), envMap(map[string]string{
			EnvConfig: path,
			EnvEngine: "/opt/rg",
			EnvDebug:  "1",
		}))
		require.NoError(t, err)
		assert.Equal(t, "/opt/rg", cfg.Engine)
		assert.True(t, cfg.Debug)
	})

	t.Run("env_file_missing", func(t *testing.T) {
		_, err := Discover(testContext(t), t.TempDir(), envMap(map[string]string{
			EnvConfig: filepath.Join(t.TempDir(), "nope.yaml"),
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})

	t.Run("debug_false_values", func(t *testing.T) {
		for _, v := range []string{"", "0", "false", "OFF"} {
			cfg, err := Discover(testContext(t), t.TempDir(), envMap(map[string]string{EnvDebug: v}))
			require.NoError(t, err)
			assert.False(t, cfg.Debug, "SD_RG_DEBUG=%q", v)
		}
	})
}

func TestIsProtected(t *testing.T) {
	cfg := &Config{Protect: []string{"**/*.lock", "vendor/**", "go.sum"}}
	require.NoError(t, cfg.Validate())

	tests := []struct {
		path string
		want bool
	}{
		{path: "Cargo.lock", want: true},
		{path: "./Cargo.lock", want: true},
		{path: "sub/dir/yarn.lock", want: true},
		{path: "vendor/github.com/x/y.go", want: true},
		{path: "go.sum", want: true},
		{path: "pkg/go.sum", want: false},
		{path: "main.go", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.IsProtected(tt.path))
		})
	}

	assert.False(t, Default().IsProtected("anything"), "no globs protect nothing")
}

func TestIsProtectedAbsolutePaths(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	cfg := &Config{Protect: []string{"vendor/**", "go.sum"}}
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "absolute_under_wd", path: filepath.Join(dir, "vendor", "x", "y.go"), want: true},
		{name: "absolute_root_file", path: filepath.Join(dir, "go.sum"), want: true},
		{name: "dot_prefixed", path: "./vendor/y.go", want: true},
		{name: "absolute_unprotected", path: filepath.Join(dir, "main.go"), want: false},
		{name: "outside_wd", path: filepath.Join(filepath.Dir(dir), "vendor", "y.go"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.IsProtected(tt.path))
		})
	}
}
