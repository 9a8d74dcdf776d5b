package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingEnv is returned when a required environment variable is unset or empty.
var ErrMissingEnv = errors.New("missing required environment variable")

const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

type Config struct {
	Instance struct {
		URL         string
		AccessToken string
		UserAgent   string
		Timeout     time.Duration
	}
	Sitemap struct {
		AccountUsername    string
		OutputDirectory    string
		TimelineLimit      int
		StrictOutput       bool
		MalformedURLPolicy string
		ConcurrentFetch    bool
	}
	Database struct {
		URL string
	}
	Server struct {
		Port int
	}
	Log struct {
		Level string
		Dir   string
	}
}

// LoadConfig reads an optional .env file and the process environment.
// The returned Config is not modified afterwards.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var cfg Config
	var err error

	if cfg.Instance.URL, err = Require(v, "INSTANCE_URL", "https://mastodon.social"); err != nil {
		return nil, err
	}
	if cfg.Instance.AccessToken, err = Require(v, "ACCESS_TOKEN", "foobar1234"); err != nil {
		return nil, err
	}
	if cfg.Sitemap.AccountUsername, err = Require(v, "ACCOUNT_USERNAME", "YourUsername"); err != nil {
		return nil, err
	}

	cfg.Sitemap.OutputDirectory = Optional(v, "OUTPUT_DIRECTORY", "")
	cfg.Instance.UserAgent = v.GetString("USER_AGENT")
	cfg.Instance.Timeout = v.GetDuration("HTTP_TIMEOUT")
	cfg.Sitemap.TimelineLimit = v.GetInt("TIMELINE_LIMIT")
	cfg.Sitemap.StrictOutput = v.GetBool("STRICT_OUTPUT")
	cfg.Sitemap.MalformedURLPolicy = v.GetString("MALFORMED_URL_POLICY")
	cfg.Sitemap.ConcurrentFetch = v.GetBool("CONCURRENT_FETCH")
	cfg.Database.URL = v.GetString("DATABASE_URL")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Dir = v.GetString("LOG_DIR")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("USER_AGENT", "mastodon-sitemap/0.0.1")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("TIMELINE_LIMIT", 100)
	v.SetDefault("STRICT_OUTPUT", false)
	v.SetDefault("MALFORMED_URL_POLICY", PolicyAbort)
	v.SetDefault("CONCURRENT_FETCH", false)
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
}

// Require returns the value of key, or an error naming the key and an
// example value when it is unset or empty.
func Require(v *viper.Viper, key, example string) (string, error) {
	if !v.IsSet(key) {
		return "", fmt.Errorf("%w: %s must be set. For example: %s", ErrMissingEnv, key, example)
	}
	value := v.GetString(key)
	if value == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrMissingEnv, key)
	}
	return value, nil
}

// Optional returns the value of key, or def when it is unset.
func Optional(v *viper.Viper, key, def string) string {
	if !v.IsSet(key) {
		return def
	}
	return v.GetString(key)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Instance.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("INSTANCE_URL must be an absolute URL, got %q", c.Instance.URL)
	}

	switch c.Sitemap.MalformedURLPolicy {
	case "":
		c.Sitemap.MalformedURLPolicy = PolicyAbort
	case PolicyAbort, PolicySkip:
	default:
		return fmt.Errorf("MALFORMED_URL_POLICY must be %q or %q, got %q",
			PolicyAbort, PolicySkip, c.Sitemap.MalformedURLPolicy)
	}

	if c.Sitemap.TimelineLimit <= 0 {
		c.Sitemap.TimelineLimit = 100
	}
	if c.Instance.UserAgent == "" {
		c.Instance.UserAgent = "mastodon-sitemap/0.0.1"
	}
	if c.Instance.Timeout <= 0 {
		c.Instance.Timeout = 30 * time.Second
	}

	return nil
}

// OutputPath is the location of the generated sitemap file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Sitemap.OutputDirectory, "sitemap.xml")
}
