// Package config holds the bookscape settings resolved from config.yaml,
// the environment and command line flags.
package config

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultTerms are the search terms ingested when none are configured.
var DefaultTerms = []string{
	"Python programming",
	"Data Science",
	"Machine Learning",
	"Web Development",
	"Economics",
	"Cooking Books",
	"English Literature",
	"Human Psychology",
	"Physics",
	"Business",
}

// APIKeyEnv is the environment variable holding the Google Books API key.
const APIKeyEnv = "GOOGLE_BOOKS_API_KEY"

// Config is the resolved configuration of a run.
type Config struct {
	GoogleBooks GoogleBooks `mapstructure:"googlebooks"`
	Database    Database    `mapstructure:"database"`
	Cache       Cache       `mapstructure:"cache"`
	Output      Output      `mapstructure:"output"`
}

// GoogleBooks configures the fetcher.
type GoogleBooks struct {
	APIKey     string   `mapstructure:"apikey"`
	BaseURL    string   `mapstructure:"baseurl" validate:"omitempty,url"`
	Terms      []string `mapstructure:"terms" validate:"min=1,dive,required"`
	MaxResults int      `mapstructure:"maxresults" validate:"gt=0"`
	PageSize   int      `mapstructure:"pagesize" validate:"gt=0,lte=40"`
	RateLimit  float64  `mapstructure:"ratelimit" validate:"gte=0"`
}

// Database selects the storage backend.
type Database struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// Cache configures the search page cache.
type Cache struct {
	Enabled bool          `mapstructure:"enabled"`
	DBFile  string        `mapstructure:"dbfile" validate:"required_if=Enabled true"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// Output names optional run artefacts.
type Output struct {
	ReportFile  string `mapstructure:"report"`
	MetricsFile string `mapstructure:"metrics"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("googlebooks.terms", DefaultTerms)
	v.SetDefault("googlebooks.maxresults", 500)
	v.SetDefault("googlebooks.pagesize", 40)
	v.SetDefault("googlebooks.ratelimit", 2.0)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./bookscape.db")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dbfile", "./cache.db")
	v.SetDefault("cache.ttl", "720h") // 30 days
}

// BindEnv maps the supported environment variables onto v.
func BindEnv(v *viper.Viper) error {
	if err := v.BindEnv("googlebooks.apikey", APIKeyEnv); err != nil {
		return fmt.Errorf("failed to bind %s: %w", APIKeyEnv, err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field and reports all problems at once using the
// config file key names.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	// Namespace is "Config.section.key"; drop the root type name
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", key)
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", key, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", key, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", key, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", key, fe.Param())
	case "url":
		return fmt.Sprintf("%s is not a valid URL", key)
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}
