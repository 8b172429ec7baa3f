package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hh-scout"
)

type Config struct {
	ExcludeFile string          `mapstructure:"exclude-file"`
	UserAgent   string          `mapstructure:"user-agent"`
	TokenFile   string          `mapstructure:"token-file"`
	Profile     *ProfileConfig  `mapstructure:"profile"`
	Apply       *ApplyConfig    `mapstructure:"apply"`
	AI          *AIConfig       `mapstructure:"ai"`
	Database    *DatabaseConfig `mapstructure:"database"`
	Redis       *RedisConfig    `mapstructure:"redis"`
	Schedule    *ScheduleConfig `mapstructure:"schedule"`
	Scoring     *ScoringConfig  `mapstructure:"scoring"`
	MetricsAddr string          `mapstructure:"metrics-addr"`
}

// ProfileConfig points to a ready profile or to a résumé to analyze.
// Without both the hh.ru résumé selected in apply.resume is analyzed.
type ProfileConfig struct {
	File       string `mapstructure:"file"`
	ResumeFile string `mapstructure:"resume-file"`
}

type ApplyConfig struct {
	Resume       string        `mapstructure:"resume"`
	Message      string        `mapstructure:"message"`
	Selection    string        `mapstructure:"selection"`
	Interval     time.Duration `mapstructure:"interval"`
	CoverLetters bool          `mapstructure:"cover-letters"`
	UserID       int64         `mapstructure:"user-id"`
	Exclude      *struct {
		Employers []string
	}
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	ProfileTTL time.Duration `mapstructure:"profile-ttl"`
}

type ScheduleConfig struct {
	Spec       string        `mapstructure:"spec"`
	Timezone   string        `mapstructure:"timezone"`
	DigestSize int           `mapstructure:"digest-size"`
	UserPause  time.Duration `mapstructure:"user-pause"`
	RunOnStart bool          `mapstructure:"run-on-start"`
}

type ScoringConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-scout finds, ranks and applies to hh.ru vacancies that fit a resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"token-file":             "HH_TOKEN_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"database.url":           "DATABASE_URL",
		"redis.url":              "REDIS_URL",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default config may be absent when everything comes from flags and env.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.Apply == nil {
		config.Apply = &ApplyConfig{}
	}
	if config.Profile == nil {
		config.Profile = &ProfileConfig{}
	}

	return config, nil
}
