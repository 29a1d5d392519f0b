package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 20 * 1024 * 1024 // 20MB upload cap

	// Oracle defaults
	DefaultOracleTimeoutSeconds = 60
)

// Config holds all configuration for the docx-fill server
type Config struct {
	// Server configuration
	Host string
	Port int

	// Document configuration
	MaxFileSize int64 // Maximum upload size in bytes

	// Placeholder fill policy: when a filled value's name carries no
	// occurrence suffix, fill every occurrence of the literal (true) or
	// only the first one (false).
	FillAllOccurrences bool

	// Oracle configuration. The API key is read from the environment only;
	// when absent the service runs with the deterministic regex scanner.
	OracleBaseURL        string
	OracleModel          string
	OracleAPIKey         string
	OracleTimeoutSeconds int

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:                 DefaultHost,
		Port:                 DefaultPort,
		MaxFileSize:          DefaultMaxFileSize,
		FillAllOccurrences:   false,
		OracleTimeoutSeconds: DefaultOracleTimeoutSeconds,
		Version:              "1.0.0",
		ServerName:           "docx-fill",
		LogLevel:             DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("DOCX_FILL")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("fillall", cfg.FillAllOccurrences)
	viper.SetDefault("oracleurl", cfg.OracleBaseURL)
	viper.SetDefault("oraclemodel", cfg.OracleModel)
	viper.SetDefault("oracletimeout", cfg.OracleTimeoutSeconds)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document upload size in bytes")
	pflag.Bool("fillall", cfg.FillAllOccurrences, "Fill every occurrence of a repeated placeholder that has no occurrence suffix")
	pflag.String("oracleurl", cfg.OracleBaseURL, "Base URL of the OpenAI-compatible completion endpoint")
	pflag.String("oraclemodel", cfg.OracleModel, "Model name for oracle calls")
	pflag.Int("oracletimeout", cfg.OracleTimeoutSeconds, "Oracle request timeout in seconds")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("fillall", pflag.Lookup("fillall"))
	_ = viper.BindPFlag("oracleurl", pflag.Lookup("oracleurl"))
	_ = viper.BindPFlag("oraclemodel", pflag.Lookup("oraclemodel"))
	_ = viper.BindPFlag("oracletimeout", pflag.Lookup("oracletimeout"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ndocx-fill - A web service that detects and fills placeholders in .docx documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # listen on 127.0.0.1:8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8081       # listen on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --fillall                        # repeated labels filled everywhere\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_HOST           Server host\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_PORT           Server port\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_MAXFILESIZE    Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_FILLALL        Fill-all-occurrences policy\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_ORACLEURL      Oracle endpoint base URL\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_ORACLEMODEL    Oracle model name\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_ORACLETIMEOUT  Oracle timeout in seconds\n")
		fmt.Fprintf(os.Stderr, "  DOCX_FILL_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  GROQ_API_KEY             Oracle credential (enables oracle detection and chat)\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.FillAllOccurrences = viper.GetBool("fillall")
	cfg.OracleBaseURL = viper.GetString("oracleurl")
	cfg.OracleModel = viper.GetString("oraclemodel")
	cfg.OracleTimeoutSeconds = viper.GetInt("oracletimeout")
	cfg.LogLevel = viper.GetString("loglevel")

	// The credential is environment-only so it never shows up in process
	// listings or flag defaults.
	cfg.OracleAPIKey = os.Getenv("GROQ_API_KEY")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate oracle timeout
	if c.OracleTimeoutSeconds <= 0 {
		return errors.New("oracle timeout must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// HasOracle reports whether an oracle credential is configured
func (c *Config) HasOracle() bool {
	return c.OracleAPIKey != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, MaxFileSize: %d, FillAllOccurrences: %t, LogLevel: %s, Oracle: %t}",
		c.Host, c.Port, c.MaxFileSize, c.FillAllOccurrences, c.LogLevel, c.HasOracle())
}
