package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Scheduler       SchedulerConfig      `mapstructure:"scheduler"`
	AWS             AWSConfig            `mapstructure:"aws"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type     ServiceType `mapstructure:"type"`
	Port     string      `mapstructure:"port"`
	LogLevel string      `mapstructure:"logLevel"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	PasswordSecretID string `mapstructure:"passwordSecretId"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	FormCatalog FormCatalogConfig `mapstructure:"formCatalog"`
}

type FormCatalogConfig struct {
	Addresses       []string `mapstructure:"addresses"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	Index           string   `mapstructure:"index"`
	CacheTTLSeconds int      `mapstructure:"cacheTtlSeconds"`
}

type SchedulerConfig struct {
	// CronSpec drives the tick loop, e.g. "@every 1m".
	CronSpec string `mapstructure:"cronSpec"`
	// TickWindowSeconds is how far past a wall-clock firing instant a tick
	// may still claim it. Should match the tick frequency.
	TickWindowSeconds     int `mapstructure:"tickWindowSeconds"`
	DueDateOffsetHours    int `mapstructure:"dueDateOffsetHours"`
	PersistTimeoutSeconds int `mapstructure:"persistTimeoutSeconds"`
	VocabularyTTLSeconds  int `mapstructure:"vocabularyTtlSeconds"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

func LoadConfig(path, env string) (*Config, error) {
	var cfg Config

	configName := "appsettings"
	if env != "" {
		configName = fmt.Sprintf("appsettings.%s", env)
	}

	viper.AddConfigPath(path)
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
