package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/haojie06/canvas-relay/internal/config"
	"github.com/haojie06/canvas-relay/internal/imagegen"
	"github.com/haojie06/canvas-relay/internal/logger"
	"github.com/haojie06/canvas-relay/internal/server"
	"github.com/haojie06/canvas-relay/internal/server/handler"
	"github.com/haojie06/canvas-relay/internal/storage"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.LogLevel, server.InLambda()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	if cfg.Storage.Bucket == "" {
		logger.Panicf("S3_BUCKET_SAVE_IMAGE is required")
	}

	generator, err := imagegen.NewClient(context.Background(), cfg.ImageGen)
	if err != nil {
		logger.Panicf("failed to create image generator: %v", err)
	}
	store, err := storage.NewClientFromConfig(cfg.Storage)
	if err != nil {
		logger.Panicf("failed to create object store client: %v", err)
	}

	h := handler.NewGenerationHandler(generator, store, cfg.Storage.Bucket, rand.New(rand.NewSource(time.Now().UnixNano())))
	router := server.NewRouter(cfg.Server.EnablePprof, server.GenerationRoutes(h))
	server.Start(router, cfg.Server)
}
