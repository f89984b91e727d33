package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Registry
	RegistryURL          string
	RegistryAPIKey       string
	RegistryAPIKeyHeader string
	PageSize             int
	RateLimit            float64 // requests per second
	RateBurst            int
	HTTPTimeout          time.Duration
	Concurrency          int

	// Ranking
	Ranker              string // lexical or genai
	GenAIModel          string
	GenAIAPIKey         string
	GoogleCloudProject  string
	GoogleCloudLocation string

	// Pairings; empty keeps them in memory
	PairingsPath string

	// Logging configuration. LogLevel comes from --log-level; EnvLogLevel
	// from the environment or config file and yields to -v/-q.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// Ranker names.
const (
	RankerLexical = "lexical"
	RankerGenAI   = "genai"
)

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (LEIMAP_ prefixed, plus provider keys)
// 3. .env files
// 4. Config file (~/.leimap.yaml or the file named by LEIMAP_CONFIG)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file, as given by --config.
func LoadConfigFile(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("LEIMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	// Provider credentials keep their conventional unprefixed names.
	for key, envs := range map[string][]string{
		"genai_api_key":         {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"google_cloud_project":  {"GOOGLE_CLOUD_PROJECT"},
		"google_cloud_location": {"GOOGLE_CLOUD_LOCATION"},
		"log_level":             {"LEIMAP_LOG_LEVEL", "LOG_LEVEL"},
		"log_format":            {"LEIMAP_LOG_FORMAT", "LOG_FORMAT"},
		"log_output":            {"LEIMAP_LOG_OUTPUT", "LOG_OUTPUT"},
	} {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, errors.NewConfigError("config", "failed to bind "+key, err)
		}
	}

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(strings.TrimSuffix(constants.DefaultConfigFile, filepath.Ext(constants.DefaultConfigFile)))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && path != "" {
			return nil, errors.NewConfigError("config", "failed to read "+path, err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		RegistryURL:          v.GetString("registry_url"),
		RegistryAPIKey:       v.GetString("registry_api_key"),
		RegistryAPIKeyHeader: v.GetString("registry_api_key_header"),
		PageSize:             v.GetInt("page_size"),
		RateLimit:            v.GetFloat64("rate_limit"),
		RateBurst:            v.GetInt("rate_burst"),
		HTTPTimeout:          v.GetDuration("http_timeout"),
		Concurrency:          v.GetInt("concurrency"),

		Ranker:              strings.ToLower(v.GetString("ranker")),
		GenAIModel:          v.GetString("genai_model"),
		GenAIAPIKey:         v.GetString("genai_api_key"),
		GoogleCloudProject:  v.GetString("google_cloud_project"),
		GoogleCloudLocation: v.GetString("google_cloud_location"),

		PairingsPath: expandHome(v.GetString("pairings_path")),

		EnvLogLevel: v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		LogOutput:   v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("registry_url", constants.DefaultRegistryURL)
	v.SetDefault("registry_api_key_header", "X-API-Key")
	v.SetDefault("page_size", constants.DefaultChildrenPageSize)
	v.SetDefault("rate_limit", constants.DefaultRegistryRate)
	v.SetDefault("rate_burst", constants.DefaultRegistryBurst)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("concurrency", 1)
	v.SetDefault("ranker", RankerLexical)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.Ranker {
	case RankerLexical, RankerGenAI:
	default:
		return errors.NewConfigError("config", "ranker must be lexical or genai, got "+c.Ranker, nil)
	}
	if c.Concurrency < 1 {
		return errors.NewConfigError("config", "concurrency must be at least 1", nil)
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return errors.NewConfigError("config", "rate_limit and rate_burst must be positive", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win; godotenv never overrides.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
