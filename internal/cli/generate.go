package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ama5ter/spec2testdata/internal/ai"
	"github.com/ama5ter/spec2testdata/internal/gen"
	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Path        string
	Method      string
	Out         string
	IncludeTags []string
	ExcludeTags []string
	AI          bool
	Provider    string
	Model       string
	APIKey      string
	Seed        int64
	SeedSet     bool
	Count       int
	ConfigPath  string
	Verbose     bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Provider: "openai", Count: 1}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a request/response payload for one endpoint",
		Long: "Generate a request/response test-data payload for one endpoint of an " +
			"OpenAPI/Swagger document, using random schema-driven synthesis or an AI backend.",
		Example: strings.TrimSpace(`  spec2testdata generate --input spec.yaml --path /users --method post
  spec2testdata generate --input spec.yaml --path /users --method post --seed 7 --out users.json
  spec2testdata generate --input spec.yaml --path /users --method post --ai --provider anthropic`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("path", "", "Endpoint path template, e.g. /users/{id}")
	flags.String("method", "", "Endpoint HTTP method, e.g. get or POST")
	flags.String("out", "", "Output file for the payload JSON (stdout when omitted)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.Bool("ai", false, "Delegate synthesis to a generative AI backend")
	flags.String("provider", "", "AI provider (openai|anthropic); defaults to openai")
	flags.String("model", "", "Override the AI provider's default model")
	flags.String("api-key", "", "AI provider API key (falls back to OPENAI_API_KEY / ANTHROPIC_API_KEY)")
	flags.Int64("seed", 0, "Fix the random seed for reproducible output")
	flags.Int("count", 1, "Number of payloads to generate (an array when more than one)")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("path") {
		value, err := flags.GetString("path")
		if err != nil {
			return err
		}
		cfg.Path = strings.TrimSpace(value)
	}
	if flags.Changed("method") {
		value, err := flags.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}
	if flags.Changed("ai") {
		value, err := flags.GetBool("ai")
		if err != nil {
			return err
		}
		cfg.AI = value
	}
	if flags.Changed("provider") {
		value, err := flags.GetString("provider")
		if err != nil {
			return err
		}
		cfg.Provider = strings.TrimSpace(value)
	}
	if flags.Changed("model") {
		value, err := flags.GetString("model")
		if err != nil {
			return err
		}
		cfg.Model = strings.TrimSpace(value)
	}
	if flags.Changed("api-key") {
		value, err := flags.GetString("api-key")
		if err != nil {
			return err
		}
		cfg.APIKey = strings.TrimSpace(value)
	}
	if flags.Changed("seed") {
		value, err := flags.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = value
		cfg.SeedSet = true
	}
	if flags.Changed("count") {
		value, err := flags.GetInt("count")
		if err != nil {
			return err
		}
		cfg.Count = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Path = strings.TrimSpace(c.Path)
	c.Method = strings.ToLower(strings.TrimSpace(c.Method))
	c.Out = strings.TrimSpace(c.Out)
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Model = strings.TrimSpace(c.Model)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if c.Path == "" {
		return newUsageError("generate: --path is required")
	}
	if c.Method == "" {
		return newUsageError("generate: --method is required")
	}
	switch c.Method {
	case "get", "post", "put", "delete", "patch", "head", "options", "trace":
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --method %q", c.Method))
	}

	if c.Provider == "" {
		c.Provider = "openai"
	}
	switch c.Provider {
	case "openai", "anthropic":
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --provider %q (allowed: openai, anthropic)", c.Provider))
	}

	if c.Count < 1 {
		return newUsageError("generate: --count must be at least 1")
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := newLogger(cfg.Verbose)
	defer func() { _ = logger.Sync() }()

	sm, err := loadModel(ctx, logger, cfg.Input, cfg.IncludeTags, cfg.ExcludeTags)
	if err != nil {
		return err
	}
	logger.Debug("service model built",
		zap.String("title", sm.Title),
		zap.Int("endpoints", len(sm.Endpoints)),
		zap.Int("schemas", len(sm.Schemas)))

	payloads := make([]*gen.Payload, 0, cfg.Count)
	if cfg.AI {
		backend, err := newBackend(cfg, logger)
		if err != nil {
			return err
		}
		generator := ai.NewGenerator(sm, backend, ai.WithLogger(logger))
		for i := 0; i < cfg.Count; i++ {
			payload, err := generator.ForEndpoint(ctx, cfg.Path, cfg.Method)
			if err != nil {
				return err
			}
			payloads = append(payloads, payload)
		}
	} else {
		var opts []gen.Option
		if cfg.SeedSet {
			opts = append(opts, gen.WithSeed(cfg.Seed))
		}
		synth := gen.New(sm, opts...)
		for i := 0; i < cfg.Count; i++ {
			payload, err := synth.ForEndpoint(cfg.Path, cfg.Method)
			if err != nil {
				return err
			}
			payloads = append(payloads, payload)
		}
	}

	if cfg.Out != "" {
		if err := writePayloads(cfg.Out, payloads); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote payload for %s %s to %s\n", strings.ToUpper(cfg.Method), cfg.Path, cfg.Out)
		return nil
	}

	data, err := marshalPayloads(payloads)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// marshalPayloads renders a single payload as an object and several as an
// array, so --count 1 output stays byte-compatible with earlier runs.
func marshalPayloads(payloads []*gen.Payload) ([]byte, error) {
	if len(payloads) == 1 {
		return payloads[0].MarshalIndent()
	}
	return json.MarshalIndent(payloads, "", "  ")
}

func writePayloads(path string, payloads []*gen.Payload) error {
	if len(payloads) == 1 {
		return payloads[0].WriteFile(path)
	}
	data, err := marshalPayloads(payloads)
	if err != nil {
		return fmt.Errorf("marshal payloads: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadModel loads a spec document and builds the internal model, mapping
// structured spec errors into friendly usage messages.
func loadModel(ctx context.Context, logger *zap.Logger, input string, includeTags, excludeTags []string) (*genspec.ServiceModel, error) {
	doc, err := genspec.Load(ctx, input, genspec.WithLogger(logger))
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return nil, newUsageError(msg)
		}
		return nil, err
	}

	sm, err := genspec.BuildServiceModel(ctx, doc,
		genspec.WithIncludeTags(includeTags),
		genspec.WithExcludeTags(excludeTags),
	)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	return sm, nil
}

// newBackend constructs the configured AI provider client. API keys resolve
// from the flag/config value first, then the provider's conventional
// environment variable; the clients themselves never read the environment.
func newBackend(cfg *GenerateConfig, logger *zap.Logger) (ai.Backend, error) {
	key := cfg.APIKey
	switch cfg.Provider {
	case "openai":
		if key == "" {
			key = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
		return ai.NewOpenAI(ai.ClientConfig{APIKey: key, Model: cfg.Model, Logger: logger})
	case "anthropic":
		if key == "" {
			key = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
		}
		return ai.NewAnthropic(ai.ClientConfig{APIKey: key, Model: cfg.Model, Logger: logger})
	default:
		return nil, newUsageError(fmt.Sprintf("generate: unsupported --provider %q (allowed: openai, anthropic)", cfg.Provider))
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "path":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Path = str
		case "method":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Method = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "includetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.IncludeTags = sanitizeTags(list)
		case "excludetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ExcludeTags = sanitizeTags(list)
		case "ai":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.AI = val
		case "provider":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Provider = str
		case "model":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Model = str
		case "apikey":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.APIKey = str
		case "seed":
			n, err := valueAsInt64(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Seed = n
			cfg.SeedSet = true
		case "count":
			n, err := valueAsInt64(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Count = int(n)
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case uint64:
		return int64(val), nil
	case float64:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
