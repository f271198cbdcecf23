package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.ImageGen.ModelId != "amazon.nova-canvas-v1:0" {
		t.Errorf("ModelId = %q", c.ImageGen.ModelId)
	}
	if c.ImageGen.Width != 1024 || c.ImageGen.Height != 1024 {
		t.Errorf("dimensions = %dx%d, want 1024x1024", c.ImageGen.Width, c.ImageGen.Height)
	}
	if c.ImageGen.SeedMax != 1000000 {
		t.Errorf("SeedMax = %d", c.ImageGen.SeedMax)
	}
	if c.ImageGen.CfgScale != 8.0 {
		t.Errorf("CfgScale = %v", c.ImageGen.CfgScale)
	}
	if c.Chat.Provider != ChatProviderSlack {
		t.Errorf("Provider = %q", c.Chat.Provider)
	}
	if c.Storage.MaxObjectBytes != 20<<20 {
		t.Errorf("MaxObjectBytes = %d", c.Storage.MaxObjectBytes)
	}
	if c.Server.LambdaEvent != LambdaEventV2 {
		t.Errorf("LambdaEvent = %q", c.Server.LambdaEvent)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("S3_BUCKET_SAVE_IMAGE", "gen-bucket")
	t.Setenv("AWS_REGION_BEDROCK", "us-west-2")
	t.Setenv("AWS_REGION", "ap-northeast-1")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("MAIN_CHANNEL_ID", "C123")
	t.Setenv("IMAGE_SEED_MAX", "42")
	t.Setenv("CHAT_PROVIDER", "Slack")

	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Storage.Bucket != "gen-bucket" {
		t.Errorf("Bucket = %q", c.Storage.Bucket)
	}
	if c.ImageGen.Region != "us-west-2" {
		t.Errorf("ImageGen.Region = %q", c.ImageGen.Region)
	}
	if c.Storage.Region != "ap-northeast-1" {
		t.Errorf("Storage.Region = %q", c.Storage.Region)
	}
	if c.Chat.SlackBotToken != "xoxb-test" || c.Chat.ChannelId != "C123" {
		t.Errorf("chat = %+v", c.Chat)
	}
	if c.ImageGen.SeedMax != 42 {
		t.Errorf("SeedMax = %d", c.ImageGen.SeedMax)
	}
	if c.Chat.Provider != ChatProviderSlack {
		t.Errorf("Provider = %q", c.Chat.Provider)
	}
}

func TestLoadYAMLAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "storage:\n  bucket: yaml-bucket\nchat:\n  channelId: C-yaml\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SLACK_BOT_TOKEN=xoxb-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SLACK_BOT_TOKEN") })

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Storage.Bucket != "yaml-bucket" {
		t.Errorf("Bucket = %q", c.Storage.Bucket)
	}
	if c.Chat.ChannelId != "C-yaml" {
		t.Errorf("ChannelId = %q", c.Chat.ChannelId)
	}
	if c.Chat.SlackBotToken != "xoxb-dotenv" {
		t.Errorf("SlackBotToken = %q", c.Chat.SlackBotToken)
	}
}

func TestLoadRejectsNonPositiveSeedMax(t *testing.T) {
	t.Setenv("IMAGE_SEED_MAX", "0")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for zero seed max")
	}
}

func TestLoadLambdaEventVersion(t *testing.T) {
	t.Setenv("LAMBDA_EVENT_VERSION", "V1")
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Server.LambdaEvent != LambdaEventV1 {
		t.Errorf("LambdaEvent = %q, want v1", c.Server.LambdaEvent)
	}

	t.Setenv("LAMBDA_EVENT_VERSION", "v3")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for unknown event version")
	}
}

func TestChatConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		chat    ChatConfig
		wantErr error
	}{
		{
			name: "slack ok",
			chat: ChatConfig{Provider: ChatProviderSlack, SlackBotToken: "xoxb", ChannelId: "C1"},
		},
		{
			name: "empty provider falls back to slack",
			chat: ChatConfig{SlackBotToken: "xoxb", ChannelId: "C1"},
		},
		{
			name:    "slack missing token",
			chat:    ChatConfig{Provider: ChatProviderSlack, ChannelId: "C1"},
			wantErr: ErrChatNotConfigured,
		},
		{
			name:    "missing channel",
			chat:    ChatConfig{Provider: ChatProviderSlack, SlackBotToken: "xoxb"},
			wantErr: ErrChatNotConfigured,
		},
		{
			name: "discord ok",
			chat: ChatConfig{Provider: ChatProviderDiscord, DiscordToken: "tok", ChannelId: "123"},
		},
		{
			name:    "discord ignores slack token",
			chat:    ChatConfig{Provider: ChatProviderDiscord, SlackBotToken: "xoxb", ChannelId: "123"},
			wantErr: ErrChatNotConfigured,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chat.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := (ChatConfig{Provider: "irc", ChannelId: "x"}).Validate(); err == nil {
		t.Error("unknown provider must fail validation")
	}
}
