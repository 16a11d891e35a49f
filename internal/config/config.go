// Package config loads layered configuration: global file, project file,
// explicit override path, then environment variables. Files may be JSON,
// JSONC or YAML. String values support {env:VAR} interpolation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/openagent-dev/openagent/internal/permission"
	"github.com/openagent-dev/openagent/internal/provider"
)

// Config is the full configuration surface. It is resolved once at startup
// and passed explicitly; nothing reads it ambiently during dispatch.
type Config struct {
	Provider    ProviderConfig   `json:"provider" yaml:"provider"`
	Permissions PermissionConfig `json:"permissions" yaml:"permissions"`
	Agent       AgentConfig      `json:"agent" yaml:"agent"`
	Log         LogConfig        `json:"log" yaml:"log"`
}

// ProviderConfig selects and configures the LLM vendor.
type ProviderConfig struct {
	Vendor    string `json:"vendor" yaml:"vendor"`
	APIKey    string `json:"apiKey" yaml:"apiKey"`
	BaseURL   string `json:"baseURL" yaml:"baseURL"`
	Model     string `json:"model" yaml:"model"`
	MaxTokens int    `json:"maxTokens" yaml:"maxTokens"`
	Retries   int    `json:"retries" yaml:"retries"`
}

// PermissionConfig mirrors permission.Options in file form.
type PermissionConfig struct {
	YoloMode             bool     `json:"yoloMode" yaml:"yoloMode"`
	YoloPrompt           string   `json:"yoloPrompt" yaml:"yoloPrompt"`
	CommandAllowlist     []string `json:"commandAllowlist" yaml:"commandAllowlist"`
	CommandDenylist      []string `json:"commandDenylist" yaml:"commandDenylist"`
	DeleteFileProtection *bool    `json:"deleteFileProtection" yaml:"deleteFileProtection"`
}

// AgentConfig configures the dispatch loop.
type AgentConfig struct {
	SystemPrompt    string `json:"systemPrompt" yaml:"systemPrompt"`
	WorkDir         string `json:"workDir" yaml:"workDir"`
	BudgetThreshold int    `json:"budgetThreshold" yaml:"budgetThreshold"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// PermissionOptions converts the file form to runtime options. Delete
// protection defaults to on.
func (c *Config) PermissionOptions() permission.Options {
	opts := permission.Options{
		YoloMode:             c.Permissions.YoloMode,
		YoloPrompt:           c.Permissions.YoloPrompt,
		CommandAllowlist:     c.Permissions.CommandAllowlist,
		CommandDenylist:      c.Permissions.CommandDenylist,
		DeleteFileProtection: true,
	}
	if c.Permissions.DeleteFileProtection != nil {
		opts.DeleteFileProtection = *c.Permissions.DeleteFileProtection
	}
	return opts
}

// ProviderOptions converts the file form to the provider factory config.
func (c *Config) ProviderOptions() provider.Config {
	return provider.Config{
		Vendor:    c.Provider.Vendor,
		APIKey:    c.Provider.APIKey,
		BaseURL:   c.Provider.BaseURL,
		Model:     c.Provider.Model,
		MaxTokens: c.Provider.MaxTokens,
		Retries:   c.Provider.Retries,
	}
}

var configNames = []string{
	"openagent.json",
	"openagent.jsonc",
	"openagent.yaml",
	"openagent.yml",
}

// Load resolves configuration for a working directory. Later layers
// override earlier ones: global file, project file, OPENAGENT_CONFIG path,
// environment variables.
func Load(directory string) (*Config, error) {
	config := &Config{}

	loaded := make(map[string]bool)
	loadOnce := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		if loaded[abs] {
			return nil
		}
		if _, err := os.Stat(abs); err != nil {
			return nil
		}
		loaded[abs] = true
		return loadFile(abs, config)
	}

	if home, err := os.UserHomeDir(); err == nil {
		for _, name := range configNames {
			if err := loadOnce(filepath.Join(home, ".config", "openagent", name)); err != nil {
				return nil, err
			}
		}
	}

	if directory != "" {
		for _, name := range configNames {
			if err := loadOnce(filepath.Join(directory, name)); err != nil {
				return nil, err
			}
		}
	}

	if path := os.Getenv("OPENAGENT_CONFIG"); path != "" {
		if err := loadOnce(path); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if config.Agent.WorkDir == "" {
		config.Agent.WorkDir = directory
	}
	return config, nil
}

// loadFile merges one file into config, dispatching on extension.
func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	data = []byte(interpolate(string(data)))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	}
	return nil
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate replaces {env:VAR} placeholders with environment values.
func interpolate(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// applyEnv layers environment overrides on top of file values.
func applyEnv(config *Config) {
	if v := os.Getenv("OPENAGENT_VENDOR"); v != "" {
		config.Provider.Vendor = v
	}
	if v := os.Getenv("OPENAGENT_MODEL"); v != "" {
		config.Provider.Model = v
	}
	if v := os.Getenv("OPENAGENT_BASE_URL"); v != "" {
		config.Provider.BaseURL = v
	}
	if v := os.Getenv("OPENAGENT_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("OPENAGENT_YOLO"); v != "" {
		if yolo, err := strconv.ParseBool(v); err == nil {
			config.Permissions.YoloMode = yolo
		}
	}
}
