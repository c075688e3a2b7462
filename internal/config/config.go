package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Drafts  DraftsConfig  `yaml:"drafts"`
	Editor  EditorConfig  `yaml:"editor"`
	Render  RenderConfig  `yaml:"render"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
}

// StorageConfig selects the collaborator that owns authoritative notes.
type StorageConfig struct {
	Backend      string          `yaml:"backend" default:"memory"`
	PreviewChars int             `yaml:"preview_chars" default:"200"`
	HTTP         HTTPStoreConfig `yaml:"http"`
	S3           S3StoreConfig   `yaml:"s3"`
}

type HTTPStoreConfig struct {
	BaseURL   string `yaml:"base_url" default:"http://localhost:3000"`
	Token     string `yaml:"token" default:""`
	TimeoutMs int    `yaml:"timeout_ms" default:"10000"`
}

func (c HTTPStoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type S3StoreConfig struct {
	Bucket          string `yaml:"bucket" default:"notes"`
	Prefix          string `yaml:"prefix" default:"notes/"`
	Region          string `yaml:"region" default:"auto"`
	Endpoint        string `yaml:"endpoint" default:""`
	AccessKeyID     string `yaml:"access_key_id" default:""`
	SecretAccessKey string `yaml:"secret_access_key" default:""`
}

// DraftsConfig controls where in-progress edits are kept.
type DraftsConfig struct {
	Backend             string       `yaml:"backend" default:"sqlite"`
	KeyPrefix           string       `yaml:"key_prefix" default:"emonotes_draft_"`
	QueueSize           int          `yaml:"queue_size" default:"64"`
	KeepOnSubmitFailure bool         `yaml:"keep_on_submit_failure" default:"false"`
	SQLite              SQLiteConfig `yaml:"sqlite"`
	Redis               RedisConfig  `yaml:"redis"`
}

type SQLiteConfig struct {
	Path        string `yaml:"path" default:"drafts.db"`
	Compression string `yaml:"compression" default:"zstd"`
}

type RedisConfig struct {
	URL      string `yaml:"url" default:"redis://localhost:6379/0"`
	TTLHours int    `yaml:"ttl_hours" default:"720"`
}

func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

type EditorConfig struct {
	MaxHeadingLevel int `yaml:"max_heading_level" default:"3"`
	GroupDelayMs    int `yaml:"group_delay_ms" default:"500"`
	HistoryDepth    int `yaml:"history_depth" default:"100"`
}

func (c EditorConfig) GroupDelay() time.Duration {
	return time.Duration(c.GroupDelayMs) * time.Millisecond
}

type RenderConfig struct {
	SyntaxTheme string `yaml:"syntax_theme" default:"gruvbox"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config)
	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// applyEnv overlays secrets and endpoints that are usually kept out of the
// config file.
func applyEnv(config *Config) {
	overrides := []struct {
		env   string
		field *string
	}{
		{"NOTES_API_TOKEN", &config.Storage.HTTP.Token},
		{"S3_ACCESS_KEY_ID", &config.Storage.S3.AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", &config.Storage.S3.SecretAccessKey},
		{"S3_ENDPOINT", &config.Storage.S3.Endpoint},
		{"REDIS_URL", &config.Drafts.Redis.URL},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.field = v
		}
	}
}

// Validate rejects backend names and limits the application cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "http", "memory", "s3":
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	switch c.Drafts.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unsupported drafts backend %q", c.Drafts.Backend)
	}
	switch c.Drafts.SQLite.Compression {
	case "zstd", "gzip", "none":
	default:
		return fmt.Errorf("unsupported draft compression %q", c.Drafts.SQLite.Compression)
	}
	if c.Editor.MaxHeadingLevel < 1 || c.Editor.MaxHeadingLevel > 3 {
		return fmt.Errorf("editor.max_heading_level must be between 1 and 3, got %d", c.Editor.MaxHeadingLevel)
	}
	if c.Drafts.QueueSize < 1 {
		return fmt.Errorf("drafts.queue_size must be positive, got %d", c.Drafts.QueueSize)
	}
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
