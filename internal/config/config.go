package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pairScope/internal/pairlist"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Markets     string
	Tickers     string
	Performance string

	Report            string
	Checkpoint        string
	CheckpointEnabled bool

	Listen string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	PublishAs     string
	PublishTTL    time.Duration

	PGDSN string

	ProviderTimeout time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RateLimit       float64

	LogLevel string

	Pipeline pairlist.PipelineConfig
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAIRLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("checkpoint", "./data/pairlist_checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("listen", ":8080")
	v.SetDefault("redis-prefix", "pairlist:")
	v.SetDefault("publish-ttl", 2*time.Hour)
	v.SetDefault("provider-timeout", 30*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	pipeline, err := pipelineConfig(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Markets:           v.GetString("markets"),
		Tickers:           v.GetString("tickers"),
		Performance:       v.GetString("performance"),
		Report:            v.GetString("report"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		Listen:            v.GetString("listen"),
		RedisAddr:         v.GetString("redis-addr"),
		RedisPassword:     v.GetString("redis-password"),
		RedisDB:           v.GetInt("redis-db"),
		RedisPrefix:       v.GetString("redis-prefix"),
		PublishAs:         v.GetString("publish-as"),
		PublishTTL:        v.GetDuration("publish-ttl"),
		PGDSN:             v.GetString("pg-dsn"),
		ProviderTimeout:   v.GetDuration("provider-timeout"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		RateLimit:         v.GetFloat64("rate-limit"),
		LogLevel:          v.GetString("log-level"),
		Pipeline:          pipeline,
	}

	return cfg, nil
}

func pipelineConfig(v *viper.Viper) (pairlist.PipelineConfig, error) {
	out := pairlist.PipelineConfig{RefreshPeriod: v.GetInt("refresh_period")}
	if !v.IsSet("pairlist_filters") {
		return out, nil
	}

	raw, err := cast.ToSliceE(v.Get("pairlist_filters"))
	if err != nil {
		return out, fmt.Errorf("pairlist_filters must be a list: %w", err)
	}
	for i, entry := range raw {
		fields, err := cast.ToStringMapE(entry)
		if err != nil {
			return out, fmt.Errorf("pairlist_filters[%d]: %w", i, err)
		}
		out.Filters = append(out.Filters, pairlist.Options(lowerKeys(fields)))
	}
	return out, nil
}

// lowerKeys normalizes option keys; viper lower-cases top-level keys but
// leaves nested maps from JSON files untouched.
func lowerKeys(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, val := range fields {
		out[strings.ToLower(k)] = val
	}
	return out
}
