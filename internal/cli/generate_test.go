package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateConfigFromFlags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--path", "/users",
		"--method", "POST",
		"--out", "./users.json",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--ai",
		"--provider", "anthropic",
		"--model", "claude-x",
		"--api-key", "ak-test",
		"--seed", "42",
		"--count", "3",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if captured.Path != "/users" {
		t.Errorf("path mismatch: got %q", captured.Path)
	}
	if captured.Method != "post" {
		t.Errorf("method should normalize to lowercase: got %q", captured.Method)
	}
	if captured.Out != "./users.json" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", captured.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", captured.ExcludeTags)
	}
	if !captured.AI {
		t.Errorf("expected ai true")
	}
	if captured.Provider != "anthropic" {
		t.Errorf("provider mismatch: got %q", captured.Provider)
	}
	if captured.Model != "claude-x" {
		t.Errorf("model mismatch: got %q", captured.Model)
	}
	if captured.APIKey != "ak-test" {
		t.Errorf("api key mismatch: got %q", captured.APIKey)
	}
	if !captured.SeedSet || captured.Seed != 42 {
		t.Errorf("seed mismatch: got %d (set=%v)", captured.Seed, captured.SeedSet)
	}
	if captured.Count != 3 {
		t.Errorf("count mismatch: got %d", captured.Count)
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
path: /pets
method: get
out: from-config.json
includeTags:
  - cfgFoo
excludeTags: cfgBar
provider: anthropic
seed: 7
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--method", "DELETE",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if captured.Path != "/pets" {
		t.Errorf("path: want /pets got %q", captured.Path)
	}
	if captured.Method != "delete" {
		t.Errorf("method: flag should override config, got %q", captured.Method)
	}
	if captured.Out != "from-config.json" {
		t.Errorf("out: want from-config.json got %q", captured.Out)
	}
	if want := []string{"flagTag"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, captured.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, captured.ExcludeTags)
	}
	if captured.Provider != "anthropic" {
		t.Errorf("provider mismatch: got %q", captured.Provider)
	}
	if !captured.SeedSet || captured.Seed != 7 {
		t.Errorf("seed from config: got %d (set=%v)", captured.Seed, captured.SeedSet)
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "spec.yaml",
		"--path", "/x",
		"--method", "get",
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"generate", "--path", "/x", "--method", "get"}, "--input is required"},
		{"missing path", []string{"generate", "--input", "s.yaml", "--method", "get"}, "--path is required"},
		{"missing method", []string{"generate", "--input", "s.yaml", "--path", "/x"}, "--method is required"},
		{"bad method", []string{"generate", "--input", "s.yaml", "--path", "/x", "--method", "fetch"}, "unsupported --method"},
		{"bad provider", []string{"generate", "--input", "s.yaml", "--path", "/x", "--method", "get", "--provider", "bard"}, "unsupported --provider"},
		{"bad count", []string{"generate", "--input", "s.yaml", "--path", "/x", "--method", "get", "--count", "0"}, "--count must be at least 1"},
		{"tag overlap", []string{"generate", "--input", "s.yaml", "--path", "/x", "--method", "get", "--include-tags", "a", "--exclude-tags", "a"}, "overlap"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)

			err := root.Execute()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
