package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"benchtrim/internal/benchmark"
	errs "benchtrim/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BENCHTRIM_INDENT.
const EnvPrefix = "BENCHTRIM"

// Config holds the settings that shape a run. None of them change the
// transformation itself.
type Config struct {
	Verbose     bool          `mapstructure:"verbose"`
	LogFormat   string        `mapstructure:"log_format"`
	LogFile     string        `mapstructure:"log_file"`
	Indent      int           `mapstructure:"indent"`
	Summary     bool          `mapstructure:"summary"`
	NoColor     bool          `mapstructure:"no_color"`
	MetricsFile string        `mapstructure:"metrics_file"`
	Threshold   float64       `mapstructure:"threshold"`
	History     HistoryConfig `mapstructure:"history"`
}

// HistoryConfig selects the optional run history backend. An empty DSN
// disables history.
type HistoryConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"verbose":        "verbose",
	"log-format":     "log_format",
	"log-file":       "log_file",
	"indent":         "indent",
	"summary":        "summary",
	"no-color":       "no_color",
	"metrics-file":   "metrics_file",
	"history":        "history.dsn",
	"history-driver": "history.driver",
	"threshold":      "threshold",
}

// RegisterFlags defines the configuration flags on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	flags.String("log-format", "text", "Log format on stderr (text, json)")
	flags.String("log-file", "", "Also append JSON logs to this file")
	flags.Int("indent", 2, "Spaces per indentation level in the output document (1-8)")
	flags.Bool("summary", false, "Print a summary of the transformed results")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file (textfile collector format)")
	flags.String("history", "", "Record runs in this history store (file path or DSN)")
	flags.String("history-driver", "sqlite", "History store driver (json, sqlite, postgres)")
	flags.Float64("threshold", benchmark.DefaultThreshold, "Percentage change of median(elapsed) reported as a regression or improvement")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("indent", 2)
	v.SetDefault("summary", false)
	v.SetDefault("no_color", false)
	v.SetDefault("metrics_file", "")
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "")
	v.SetDefault("threshold", benchmark.DefaultThreshold)
}

// Load builds the configuration from, in increasing precedence: defaults, the
// config file, BENCHTRIM_* environment variables (a .env file in the working
// directory is loaded first) and flags set on flags. cfgFile may be empty, in
// which case ./benchtrim.yaml is used if present. The file is never created.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("benchtrim")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *fs.PathError
		switch {
		case errors.As(err, &notFound) && cfgFile == "":
			// No config file; defaults, env and flags only.
		case errors.As(err, &pathErr):
			return nil, errs.NewIOError(cfgFile, err)
		default:
			return nil, errs.NewUsageError("invalid config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.NewUsageError("invalid configuration: %v", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
