package main

import (
	"github.com/haojie06/canvas-relay/internal/chat"
	"github.com/haojie06/canvas-relay/internal/chat/discord"
	"github.com/haojie06/canvas-relay/internal/chat/slack"
	"github.com/haojie06/canvas-relay/internal/config"
	"github.com/haojie06/canvas-relay/internal/logger"
	"github.com/haojie06/canvas-relay/internal/server"
	"github.com/haojie06/canvas-relay/internal/server/handler"
	"github.com/haojie06/canvas-relay/internal/storage"
)

// newPoster returns nil when chat is not configured, the handler then fails
// every request with an internal service error.
func newPoster(c config.ChatConfig) chat.Poster {
	if err := c.Validate(); err != nil {
		logger.Warnf("chat poster disabled: %v", err)
		return nil
	}
	if c.Provider == config.ChatProviderDiscord {
		p, err := discord.NewPoster(c.DiscordToken, c.ChannelId)
		if err != nil {
			logger.Errorf("failed to create discord poster: %v", err)
			return nil
		}
		return p
	}
	return slack.NewClient(c.SlackBotToken, c.ChannelId, c.SlackAPIURL)
}

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.LogLevel, server.InLambda()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	store, err := storage.NewClientFromConfig(cfg.Storage)
	if err != nil {
		logger.Panicf("failed to create object store client: %v", err)
	}

	h := handler.NewPostHandler(cfg, store, newPoster(cfg.Chat))
	router := server.NewRouter(cfg.Server.EnablePprof, server.PostRoutes(h))
	server.Start(router, cfg.Server)
}
