// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/cargotally/cargotally/internal/issue"
	"github.com/cargotally/cargotally/internal/report"
	"github.com/cargotally/cargotally/internal/testutil"
)

// isolatedOptions points every lookup location at fresh temp directories.
func isolatedOptions(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{
		ConfigDirPath: t.TempDir(),
		BaseDir:       t.TempDir(),
	}
}

func load(t *testing.T, opts LoadOptions) *Config {
	t.Helper()
	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Root != "." {
		t.Errorf("Root = %q, want .", cfg.Root)
	}
	if cfg.Output != "count.csv" {
		t.Errorf("Output = %q, want count.csv", cfg.Output)
	}
	if cfg.ManifestName != "Cargo.toml" {
		t.Errorf("ManifestName = %q, want Cargo.toml", cfg.ManifestName)
	}
	if cfg.Format != report.FormatCSV {
		t.Errorf("Format = %q, want csv", cfg.Format)
	}
	if cfg.Lenient || cfg.UI.Verbose || cfg.MetricsFile != "" || len(cfg.Exclude) != 0 {
		t.Errorf("unexpected non-zero defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	tmp := t.TempDir()
	t.Cleanup(testutil.SetConfigHome(t, tmp))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if filepath.Base(dir) != AppName {
		t.Errorf("ConfigDir() = %q, want it to end in %s", dir, AppName)
	}
	if runtime.GOOS != "darwin" && !strings.HasPrefix(dir, tmp) {
		t.Errorf("ConfigDir() = %q, want it under %s", dir, tmp)
	}
}

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	cfg := load(t, opts)
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, DefaultConfig())
	}

	path, err := Resolve(opts)
	if err != nil || path != "" {
		t.Errorf("Resolve() = %q, %v; want empty path", path, err)
	}
}

func TestLoad_LookupOrder(t *testing.T) {
	t.Parallel()

	t.Run("config dir file", func(t *testing.T) {
		t.Parallel()
		opts := isolatedOptions(t)
		testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `output: "from-dir.csv"`)

		if cfg := load(t, opts); cfg.Output != "from-dir.csv" {
			t.Errorf("Output = %q, want from-dir.csv", cfg.Output)
		}
	})

	t.Run("local file", func(t *testing.T) {
		t.Parallel()
		opts := isolatedOptions(t)
		testutil.MustWriteFile(t, filepath.Join(opts.BaseDir, LocalConfigFileName), `output: "from-local.csv"`)

		if cfg := load(t, opts); cfg.Output != "from-local.csv" {
			t.Errorf("Output = %q, want from-local.csv", cfg.Output)
		}
	})

	t.Run("config dir wins over local file", func(t *testing.T) {
		t.Parallel()
		opts := isolatedOptions(t)
		testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `output: "from-dir.csv"`)
		testutil.MustWriteFile(t, filepath.Join(opts.BaseDir, LocalConfigFileName), `output: "from-local.csv"`)

		if cfg := load(t, opts); cfg.Output != "from-dir.csv" {
			t.Errorf("Output = %q, want from-dir.csv", cfg.Output)
		}
	})

	t.Run("explicit file is exclusive", func(t *testing.T) {
		t.Parallel()
		opts := isolatedOptions(t)
		testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `output: "from-dir.csv"`+"\n"+`lenient: true`)
		custom := filepath.Join(t.TempDir(), "custom.cue")
		testutil.MustWriteFile(t, custom, `format: "json"`)
		opts.ConfigFilePath = custom

		cfg := load(t, opts)
		if cfg.Format != report.FormatJSON {
			t.Errorf("Format = %q, want json", cfg.Format)
		}
		if cfg.Output != "count.csv" || cfg.Lenient {
			t.Errorf("config dir file leaked into explicit load: %+v", cfg)
		}
		if path, _ := Resolve(opts); path != custom {
			t.Errorf("Resolve() = %q, want %q", path, custom)
		}
	})
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.BaseDir, LocalConfigFileName), `
root:          "workspace"
output:        "s3+http://localhost:9000/reports/count.csv"
manifest_name: "Cargo.toml"
format:        "yaml"
exclude:       ["target", "vendor*"]
lenient:       true
metrics_file:  "/var/lib/node_exporter/cargotally.prom"
ui: verbose: true
`)

	want := &Config{
		Root:         "workspace",
		Output:       "s3+http://localhost:9000/reports/count.csv",
		ManifestName: "Cargo.toml",
		Format:       report.FormatYAML,
		Exclude:      []string{"target", "vendor*"},
		Lenient:      true,
		MetricsFile:  "/var/lib/node_exporter/cargotally.prom",
		UI:           UIConfig{Verbose: true},
	}
	if got := load(t, opts); !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{name: "invalid syntax", content: "root: \"unterminated\n"},
		{name: "unknown format", content: `format: "xml"`, contains: "format"},
		{name: "unknown field", content: `colour: "red"`, contains: "colour"},
		{name: "wrong type", content: `lenient: "yes"`, contains: "lenient"},
		{name: "empty root", content: `root: ""`, contains: "root"},
		{name: "manifest path", content: `manifest_name: "a/Cargo.toml"`, contains: "manifest_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := isolatedOptions(t)
			path := filepath.Join(opts.BaseDir, LocalConfigFileName)
			testutil.MustWriteFile(t, path, tt.content)

			_, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			ae, ok := issue.AsActionable(err)
			if !ok {
				t.Fatalf("Load() error = %T, want *issue.ActionableError", err)
			}
			if ae.IssueID != issue.ConfigLoadFailedId || ae.Resource != path {
				t.Errorf("ActionableError = %+v", ae)
			}
			if !ae.HasSuggestions() {
				t.Error("config errors should carry suggestions")
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Load() error = %q, want it to mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoad_ExplicitFileNotFound(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "missing.cue")

	_, err := NewProvider().Load(context.Background(), opts)
	ae, ok := issue.AsActionable(err)
	if !ok {
		t.Fatalf("Load() error = %v, want *issue.ActionableError", err)
	}
	if ae.Resource != opts.ConfigFilePath || !strings.Contains(ae.Format(false), "config show") {
		t.Errorf("unexpected error: %s", ae.Format(false))
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, isolatedOptions(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CARGOTALLY_FORMAT", "json")
	t.Setenv("CARGOTALLY_UI_VERBOSE", "true")
	t.Setenv("CARGOTALLY_EXCLUDE", "target,vendor")
	t.Setenv("CARGOTALLY_LENIENT", "1")

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.BaseDir, LocalConfigFileName), `format: "yaml"`+"\n"+`output: "file.csv"`)

	cfg := load(t, opts)
	if cfg.Format != report.FormatJSON {
		t.Errorf("Format = %q, want json from environment", cfg.Format)
	}
	if !cfg.UI.Verbose || !cfg.Lenient {
		t.Errorf("bool overrides not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{"target", "vendor"}) {
		t.Errorf("Exclude = %v, want [target vendor]", cfg.Exclude)
	}
	if cfg.Output != "file.csv" {
		t.Errorf("Output = %q, want value from file", cfg.Output)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("CARGOTALLY_FORMAT", "xml")

	_, err := NewProvider().Load(context.Background(), isolatedOptions(t))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, report.ErrInvalidFormat) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig wrapping ErrInvalidFormat", err)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	// Registered with t.Setenv so cleanup restores them after godotenv sets them.
	for _, key := range []string{"CARGOTALLY_OUTPUT", "CARGOTALLY_ROOT"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("CARGOTALLY_METRICS_FILE", "from-env.prom")

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.BaseDir, EnvFileName), strings.Join([]string{
		"# report location",
		"CARGOTALLY_OUTPUT=dotenv.csv",
		"CARGOTALLY_ROOT=crates",
		"CARGOTALLY_METRICS_FILE=from-dotenv.prom",
	}, "\n"))

	cfg := load(t, opts)
	if cfg.Output != "dotenv.csv" || cfg.Root != "crates" {
		t.Errorf(".env values not applied: %+v", cfg)
	}
	if cfg.MetricsFile != "from-env.prom" {
		t.Errorf("MetricsFile = %q, existing environment should win over .env", cfg.MetricsFile)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := &Config{
		Root:         "crates",
		Output:       "out/count.json",
		ManifestName: "Cargo.toml",
		Format:       report.FormatJSON,
		Exclude:      []string{"target", ".git"},
		Lenient:      true,
		MetricsFile:  "metrics.prom",
		UI:           UIConfig{Verbose: true},
	}

	opts := isolatedOptions(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "generated.cue")
	testutil.MustWriteFile(t, opts.ConfigFilePath, GenerateCUE(want))

	if got := load(t, opts); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", AppName)
	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	cfg := load(t, LoadOptions{ConfigDirPath: dir, BaseDir: t.TempDir()})
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("generated default config loads as %+v", cfg)
	}

	// An existing file is not overwritten.
	testutil.MustWriteFile(t, path, `output: "kept.csv"`)
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatalf("second CreateDefaultConfig() error: %v", err)
	}
	if got := testutil.MustReadFile(t, path); got != `output: "kept.csv"` {
		t.Errorf("existing config overwritten: %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		errs   int
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "blank root", mutate: func(c *Config) { c.Root = "  " }, errs: 1},
		{name: "blank output", mutate: func(c *Config) { c.Output = "" }, errs: 1},
		{name: "path manifest name", mutate: func(c *Config) { c.ManifestName = `dir\Cargo.toml` }, errs: 1},
		{name: "bad format", mutate: func(c *Config) { c.Format = "toml" }, errs: 1},
		{name: "bad exclude pattern", mutate: func(c *Config) { c.Exclude = []string{"ok", "[broken"} }, errs: 1},
		{
			name: "several problems",
			mutate: func(c *Config) {
				c.Root = ""
				c.Output = ""
				c.Format = ""
			},
			errs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errs == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var ice *InvalidConfigError
			if !errors.As(err, &ice) || !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want *InvalidConfigError", err)
			}
			if len(ice.FieldErrors) != tt.errs {
				t.Errorf("FieldErrors = %v, want %d", ice.FieldErrors, tt.errs)
			}
		})
	}
}

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	if err := (LoadOptions{}).Validate(); err != nil {
		t.Errorf("empty LoadOptions should be valid, got %v", err)
	}

	err := LoadOptions{ConfigFilePath: "   ", BaseDir: "\t"}.Validate()
	var loadErr *InvalidLoadOptionsError
	if !errors.As(err, &loadErr) || !errors.Is(err, ErrInvalidLoadOptions) {
		t.Fatalf("Validate() = %v, want *InvalidLoadOptionsError", err)
	}
	if len(loadErr.FieldErrors) != 2 {
		t.Errorf("FieldErrors = %v, want 2", loadErr.FieldErrors)
	}
}
