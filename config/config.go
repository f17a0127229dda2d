package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

/*
Config is the configuration for the application.

Contains the settings for building suggestion tables, for the review server
and for the review table storage.
*/
type Config struct {
	Suggest  SuggestConfig `json:"suggest" yaml:"suggest"`
	Server   ServerConfig  `json:"server" yaml:"server"`
	Storage  StorageConfig `json:"storage" yaml:"storage"`
	LogLevel string        `json:"log_level" yaml:"log_level" env:"ANALOGY_LOG_LEVEL"`
}

/*
SuggestConfig is the configuration for building an annotation table.
*/
type SuggestConfig struct {
	// number of distinct source words drawn per relation
	SampleSize int `json:"sample_size" yaml:"sample_size" env:"ANALOGY_SAMPLE_SIZE"`
	// path of the CSV written
	Output string `json:"output" yaml:"output" env:"ANALOGY_OUTPUT"`
	// dictionary files and directories
	DictPaths []string `json:"dict_paths" yaml:"dict_paths" env:"ANALOGY_DICT_PATHS" env-separator:","`
	// file suffix kept when walking dictionary directories
	DictExt string `json:"dict_ext" yaml:"dict_ext" env:"ANALOGY_DICT_EXT"`
	// relation names kept, all when empty
	Relations []string `json:"relations" yaml:"relations" env:"ANALOGY_RELATIONS" env-separator:","`
	// annotators that get a vote column
	Annotators []string `json:"annotators" yaml:"annotators" env:"ANALOGY_ANNOTATORS" env-separator:","`
	// sampling seed, 0 picks one from the clock
	Seed uint64 `json:"seed" yaml:"seed" env:"ANALOGY_SEED"`
	// resolve both lemmas from the predicted word, as the first
	// revisions of the tool did
	ResolveAFromB bool `json:"resolve_a_from_b" yaml:"resolve_a_from_b" env:"ANALOGY_RESOLVE_A_FROM_B"`
}

/*
ServerConfig is the configuration for the review server.
*/
type ServerConfig struct {
	Host string `json:"host" yaml:"host" env:"ANALOGY_HOST"`
	Port string `json:"port" yaml:"port" env:"ANALOGY_PORT"`
}

/*
StorageConfig is the configuration for the review table storage.
*/
type StorageConfig struct {
	// directory holding the saved tables
	DataPath string `json:"data_path" yaml:"data_path" env:"ANALOGY_DATA_PATH"`
	// interval to persist tables [seconds]
	PersistenceInterval int `json:"persistence_interval" yaml:"persistence_interval" env:"ANALOGY_PERSISTENCE_INTERVAL"`
}

/*
Default config
*/
func DefaultConfig() *Config {
	return &Config{
		Suggest: SuggestConfig{
			SampleSize: 10,
			Output:     "output.csv",
			DictExt:    ".dict",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		Storage: StorageConfig{
			DataPath:            "./data",
			PersistenceInterval: 5,
		},
		LogLevel: "warn",
	}
}

/*
LoadFromFile loads the configuration from a JSON or YAML file on top of the
defaults. Environment variables override the file.
*/
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

/*
LoadFromEnv loads the configuration from the environment variables.
*/
func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

/*
Validate checks if the configuration is valid
*/
func (c *Config) Validate() error {
	if c.Suggest.SampleSize <= 0 {
		return fmt.Errorf("invalid sample size: %d", c.Suggest.SampleSize)
	}
	if c.Suggest.Output == "" {
		return errors.New("empty output path")
	}
	if c.Storage.PersistenceInterval <= 0 {
		return fmt.Errorf("invalid persistence interval: %d", c.Storage.PersistenceInterval)
	}
	return nil
}
