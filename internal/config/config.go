// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/logging"
	"github.com/jeranaias/comply-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config is the complete comply configuration.
type Config struct {
	Version string `toml:"version" yaml:"version" json:"version"`

	API      APIConfig      `toml:"api" yaml:"api" json:"api"`
	User     UserConfig     `toml:"user" yaml:"user" json:"user"`
	Generate GenerateConfig `toml:"generate" yaml:"generate" json:"generate"`
	UI       UIConfig       `toml:"ui" yaml:"ui" json:"ui"`
	Log      LogConfig      `toml:"log" yaml:"log" json:"log"`
}

// APIConfig locates the compliance backend.
type APIConfig struct {
	BaseURL     string `toml:"base_url" yaml:"base_url" json:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`

	// RequestsPerMinute limits outgoing requests. -1 disables the limit.
	RequestsPerMinute int `toml:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
}

// UserConfig identifies the operator to the backend.
type UserConfig struct {
	ID string `toml:"id" yaml:"id" json:"id"`

	// AdminID is recorded as the actor of approvals and rule changes.
	// Empty means ID.
	AdminID string `toml:"admin_id" yaml:"admin_id" json:"admin_id"`
}

// GenerateConfig controls content generation requests.
type GenerateConfig struct {
	UsePromptEnhancer bool `toml:"use_prompt_enhancer" yaml:"use_prompt_enhancer" json:"use_prompt_enhancer"`
	MinPromptLength   int  `toml:"min_prompt_length" yaml:"min_prompt_length" json:"min_prompt_length"`
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	Theme     string `toml:"theme" yaml:"theme" json:"theme"` // auto, dark, light
	ShowRules bool   `toml:"show_rules" yaml:"show_rules" json:"show_rules"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`
	Format string `toml:"format" yaml:"format" json:"format"`

	// File receives TUI logs. Empty means <config dir>/logs/comply.log.
	File string `toml:"file" yaml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Defaults.
const (
	CurrentVersion         = "1"
	DefaultUserID          = "00000000-0000-0000-0000-000000000001"
	DefaultMinPromptLength = 5
	DefaultTheme           = "auto"
	DefaultLogLevel        = "info"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			BaseURL:           api.DefaultBaseURL,
			TimeoutSecs:       int(api.DefaultTimeout / time.Second),
			RequestsPerMinute: api.DefaultRequestsPerMinute,
		},
		User: UserConfig{
			ID: DefaultUserID,
		},
		Generate: GenerateConfig{
			UsePromptEnhancer: true,
			MinPromptLength:   DefaultMinPromptLength,
		},
		UI: UIConfig{
			Theme:     DefaultTheme,
			ShowRules: true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: logging.FormatText,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Config file names in lookup order.
var configFiles = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// ConfigDir returns ~/.comply, or $COMPLY_HOME when set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("COMPLY_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".comply"), nil
}

// ConfigPath returns the first existing config file, or the TOML path when
// none exists.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range configFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(dir, configFiles[0]), nil
}

// DefaultLogFile returns <config dir>/logs/comply.log.
func DefaultLogFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "comply.log"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration. An explicit path is loaded by its extension;
// otherwise ~/.comply is searched for config.toml, config.yaml, config.yml
// and config.json in that order. Environment overrides apply last and the
// result is validated.
func Load(path string) (*Config, error) {
	var cfg *Config
	var err error

	if path == "" {
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
		if _, statErr := os.Stat(path); statErr != nil {
			cfg = Default()
			path = ""
		}
	}

	if path != "" {
		cfg, err = LoadFromPath(path)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads a config file, choosing the decoder by extension.
// Fields missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = LoadTOML(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	case ".json":
		err = LoadJSON(cfg, path)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	_ = ensureSecurePermissions(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
	}
	return nil
}

// LoadYAML decodes a YAML file into cfg.
func LoadYAML(cfg *Config, path string) error {
	_ = ensureSecurePermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	_ = ensureSecurePermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse JSON config %s: %w", path, err)
	}
	return nil
}

// fillDefaults replaces zero values that would otherwise fail validation.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if cfg.API.RequestsPerMinute == 0 {
		cfg.API.RequestsPerMinute = def.API.RequestsPerMinute
	}
	if strings.TrimSpace(cfg.User.ID) == "" {
		cfg.User.ID = def.User.ID
	}
	if cfg.Generate.MinPromptLength == 0 {
		cfg.Generate.MinPromptLength = def.Generate.MinPromptLength
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to path, choosing the encoder by extension. An empty path
// means the active config file. The write is atomic and the file is 0600.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		buf.WriteString("# comply configuration\n")
		buf.WriteString("# See 'comply config keys' for the available settings.\n\n")
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFileWithDir(path, data, 0600, 0700)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" {
		errs = append(errs, ValidationError{"api.base_url", fmt.Sprintf("not a valid URL: %q", c.API.BaseURL)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{"api.base_url", fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
	}

	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{"api.timeout_secs", fmt.Sprintf("must be between 1 and 3600, got %d", c.API.TimeoutSecs)})
	}
	if c.API.RequestsPerMinute < -1 {
		errs = append(errs, ValidationError{"api.requests_per_minute", fmt.Sprintf("must be positive or -1 for unlimited, got %d", c.API.RequestsPerMinute)})
	}

	if _, err := uuid.Parse(c.User.ID); err != nil {
		errs = append(errs, ValidationError{"user.id", fmt.Sprintf("must be a UUID, got %q", c.User.ID)})
	}
	if c.User.AdminID != "" {
		if _, err := uuid.Parse(c.User.AdminID); err != nil {
			errs = append(errs, ValidationError{"user.admin_id", fmt.Sprintf("must be a UUID, got %q", c.User.AdminID)})
		}
	}

	if c.Generate.MinPromptLength < 1 || c.Generate.MinPromptLength > 1000 {
		errs = append(errs, ValidationError{"generate.min_prompt_length", fmt.Sprintf("must be between 1 and 1000, got %d", c.Generate.MinPromptLength)})
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("must be auto, dark or light, got %q", c.UI.Theme)})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{"log.level", err.Error()})
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, ValidationError{"log.format", fmt.Sprintf("must be text or json, got %q", c.Log.Format)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies COMPLY_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("COMPLY_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("COMPLY_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("COMPLY_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("COMPLY_USER_ID"); v != "" {
		c.User.ID = v
	}
	if v := os.Getenv("COMPLY_ADMIN_ID"); v != "" {
		c.User.AdminID = v
	}
	if v := os.Getenv("COMPLY_PROMPT_ENHANCER"); v != "" {
		c.Generate.UsePromptEnhancer = parseBool(v)
	}
	if v := os.Getenv("COMPLY_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("COMPLY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("COMPLY_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("COMPLY_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// ClientConfig returns the backend client settings.
func (c *Config) ClientConfig(log logrus.FieldLogger) *api.ClientConfig {
	cc := api.DefaultConfig()
	cc.BaseURL = c.API.BaseURL
	cc.Timeout = time.Duration(c.API.TimeoutSecs) * time.Second
	cc.RequestsPerMinute = c.API.RequestsPerMinute
	cc.Logger = log
	return cc
}

// LoggingConfig returns the logger settings. With toFile the configured log
// file (or the default one) is used; otherwise logs go to stderr.
func (c *Config) LoggingConfig(toFile bool) logging.Config {
	lc := logging.Config{Level: c.Log.Level, Format: c.Log.Format}
	if !toFile {
		return lc
	}
	lc.File = c.Log.File
	if lc.File == "" {
		if p, err := DefaultLogFile(); err == nil {
			lc.File = p
		}
	}
	return lc
}

// AdminID returns the actor ID for administrative actions.
func (c *Config) AdminID() string {
	if c.User.AdminID != "" {
		return c.User.AdminID
	}
	return c.User.ID
}

// =============================================================================
// GET / SET
// =============================================================================

// Get returns a value by dot-notation key (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by dot-notation key. String values are converted to
// the field's type. The config is not revalidated.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Kind() != reflect.String && val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"api.base_url",
		"api.timeout_secs",
		"api.requests_per_minute",
		"user.id",
		"user.admin_id",
		"generate.use_prompt_enhancer",
		"generate.min_prompt_length",
		"ui.theme",
		"ui.show_rules",
		"log.level",
		"log.format",
		"log.file",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
