package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ChatProviderSlack   = "slack"
	ChatProviderDiscord = "discord"

	LambdaEventV1 = "v1"
	LambdaEventV2 = "v2"
)

var ErrChatNotConfigured = errors.New("chat credentials are not configured")

type Config struct {
	Server ServerConfig `mapstructure:"server"`

	ImageGen ImageGenConfig `mapstructure:"imageGen"`

	Storage StorageConfig `mapstructure:"storage"`

	Chat ChatConfig `mapstructure:"chat"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`

	Port string `mapstructure:"port"`

	LogLevel string `mapstructure:"logLevel"`

	EnablePprof bool `mapstructure:"enablePprof"`

	LambdaEvent string `mapstructure:"lambdaEvent"` // v1 (REST API) or v2 (HTTP API, function URL)
}

type ImageGenConfig struct {
	Region string `mapstructure:"region"`

	ModelId string `mapstructure:"modelId"` // bedrock model id

	Quality string `mapstructure:"quality"`

	CfgScale float64 `mapstructure:"cfgScale"`

	Width int `mapstructure:"width"`

	Height int `mapstructure:"height"`

	SeedMax int64 `mapstructure:"seedMax"` // seed is drawn from [0, SeedMax)
}

type StorageConfig struct {
	Region string `mapstructure:"region"`

	Endpoint string `mapstructure:"endpoint"`

	Bucket string `mapstructure:"bucket"`

	AccessKey string `mapstructure:"accessKey"` // empty means env / IAM credentials

	SecretKey string `mapstructure:"secretKey"`

	UseSSL bool `mapstructure:"useSSL"`

	MaxObjectBytes int64 `mapstructure:"maxObjectBytes"`
}

type ChatConfig struct {
	Provider string `mapstructure:"provider"`

	SlackBotToken string `mapstructure:"slackBotToken"`

	SlackAPIURL string `mapstructure:"slackAPIURL"`

	DiscordToken string `mapstructure:"discordToken"`

	ChannelId string `mapstructure:"channelId"` // destination channel of every post
}

// Validate reports whether the selected provider has both a credential and a
// destination channel.
func (c ChatConfig) Validate() error {
	if c.ChannelId == "" {
		return ErrChatNotConfigured
	}
	switch c.Provider {
	case ChatProviderDiscord:
		if c.DiscordToken == "" {
			return ErrChatNotConfigured
		}
	case ChatProviderSlack, "":
		if c.SlackBotToken == "" {
			return ErrChatNotConfigured
		}
	default:
		return fmt.Errorf("unknown chat provider %q", c.Provider)
	}
	return nil
}

var envBindings = map[string]string{
	"server.host":            "HOST",
	"server.port":            "PORT",
	"server.logLevel":        "LOG_LEVEL",
	"server.enablePprof":     "ENABLE_PPROF",
	"server.lambdaEvent":     "LAMBDA_EVENT_VERSION",
	"imageGen.region":        "AWS_REGION_BEDROCK",
	"imageGen.modelId":       "IMAGE_MODEL_ID",
	"imageGen.seedMax":       "IMAGE_SEED_MAX",
	"storage.region":         "AWS_REGION",
	"storage.endpoint":       "S3_ENDPOINT",
	"storage.bucket":         "S3_BUCKET_SAVE_IMAGE",
	"storage.accessKey":      "S3_ACCESS_KEY",
	"storage.secretKey":      "S3_SECRET_KEY",
	"storage.maxObjectBytes": "MAX_OBJECT_BYTES",
	"chat.provider":          "CHAT_PROVIDER",
	"chat.slackBotToken":     "SLACK_BOT_TOKEN",
	"chat.slackAPIURL":       "SLACK_API_URL",
	"chat.discordToken":      "DISCORD_BOT_TOKEN",
	"chat.channelId":         "MAIN_CHANNEL_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "9000")
	v.SetDefault("server.logLevel", "info")
	v.SetDefault("server.enablePprof", false)
	v.SetDefault("server.lambdaEvent", LambdaEventV2)

	v.SetDefault("imageGen.region", "us-east-1")
	v.SetDefault("imageGen.modelId", "amazon.nova-canvas-v1:0")
	v.SetDefault("imageGen.quality", "standard")
	v.SetDefault("imageGen.cfgScale", 8.0)
	v.SetDefault("imageGen.width", 1024)
	v.SetDefault("imageGen.height", 1024)
	v.SetDefault("imageGen.seedMax", 1000000)

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "s3.amazonaws.com")
	v.SetDefault("storage.useSSL", true)
	v.SetDefault("storage.maxObjectBytes", 20<<20)

	v.SetDefault("chat.provider", ChatProviderSlack)
	v.SetDefault("chat.slackAPIURL", "https://slack.com/api/")
}

// Load reads an optional config.yaml from dir, an optional .env next to it,
// then the process environment, which wins over both.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(dir + "/.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Chat.Provider = strings.ToLower(c.Chat.Provider)
	c.Server.LambdaEvent = strings.ToLower(c.Server.LambdaEvent)
	if c.Server.LambdaEvent != LambdaEventV1 && c.Server.LambdaEvent != LambdaEventV2 {
		return nil, fmt.Errorf("server.lambdaEvent must be %s or %s, got %q", LambdaEventV1, LambdaEventV2, c.Server.LambdaEvent)
	}
	if c.ImageGen.SeedMax <= 0 {
		return nil, fmt.Errorf("imageGen.seedMax must be positive, got %d", c.ImageGen.SeedMax)
	}
	if c.Storage.MaxObjectBytes <= 0 {
		return nil, fmt.Errorf("storage.maxObjectBytes must be positive, got %d", c.Storage.MaxObjectBytes)
	}
	return &c, nil
}
