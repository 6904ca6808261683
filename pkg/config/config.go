// Package config loads the collection engine's run-wide settings from a
// config file, merged with environment variable overrides, the way the
// rest of this module's viper-based configuration layers are loaded.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/crypto-data/freeze/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified run configuration: the RPC endpoint, output
// location and format, and the concurrency/rate-limit bounds placed
// around every RPC call.
type Config struct {
	RPC struct {
		URL           string `mapstructure:"url" json:"url"`
		MaxRetries    uint64 `mapstructure:"max_retries" json:"max_retries"`
		MaxConcurrent int64  `mapstructure:"max_concurrent_requests" json:"max_concurrent_requests"`
		PerSecond     float64 `mapstructure:"requests_per_second" json:"requests_per_second"`
	} `mapstructure:"rpc" json:"rpc"`

	Output struct {
		Dir             string `mapstructure:"dir" json:"dir"`
		Format          string `mapstructure:"format" json:"format"`
		Overwrite       bool   `mapstructure:"overwrite" json:"overwrite"`
		HexEncoding     bool   `mapstructure:"hex_encoding" json:"hex_encoding"`
		ParquetCompress string `mapstructure:"parquet_compression" json:"parquet_compression"`
		RowGroupSize    int64  `mapstructure:"row_group_size" json:"row_group_size"`
	} `mapstructure:"output" json:"output"`

	Collection struct {
		ChunkSize           uint64 `mapstructure:"chunk_size" json:"chunk_size"`
		Align               bool   `mapstructure:"align" json:"align"`
		MaxConcurrentChunks int64  `mapstructure:"max_concurrent_chunks" json:"max_concurrent_chunks"`
		InnerRequestSize    uint64 `mapstructure:"inner_request_size" json:"inner_request_size"`
		TraceBackend        string `mapstructure:"trace_backend" json:"trace_backend"`
	} `mapstructure:"collection" json:"collection"`

	Report struct {
		Dir string `mapstructure:"dir" json:"dir"`
	} `mapstructure:"report" json:"report"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. env selects an overlay file (e.g. "local", "ci") merged on
// top of the default; an empty env loads only the default.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv()
	applyDefaults()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	if AppConfig.RPC.URL == "" {
		AppConfig.RPC.URL = utils.EnvOrDefault("ETH_RPC_URL", utils.EnvOrDefault("FREEZE_RPC_URL", ""))
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the FREEZE_ENV environment
// variable to select the overlay file.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("FREEZE_ENV", ""))
}

// applyDefaults seeds viper with the values a run should fall back to
// when neither a config file nor an environment variable sets them.
func applyDefaults() {
	viper.SetDefault("output.dir", "./freeze_output")
	viper.SetDefault("output.format", "parquet")
	viper.SetDefault("output.hex_encoding", true)
	viper.SetDefault("output.parquet_compression", "snappy")
	viper.SetDefault("collection.chunk_size", 1000)
	viper.SetDefault("collection.max_concurrent_chunks", 4)
	viper.SetDefault("collection.inner_request_size", 1000)
	viper.SetDefault("collection.trace_backend", "parity")
	viper.SetDefault("rpc.max_retries", 5)
	viper.SetDefault("rpc.max_concurrent_requests", 16)
	viper.SetDefault("report.dir", "./freeze_reports")
	viper.SetDefault("logging.level", "info")
}
