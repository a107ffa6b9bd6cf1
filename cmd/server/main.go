package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Muhammadurasheed/scholarstream/internal/api"
	"github.com/Muhammadurasheed/scholarstream/internal/auth"
	"github.com/Muhammadurasheed/scholarstream/internal/config"
	"github.com/Muhammadurasheed/scholarstream/internal/feed"
	"github.com/Muhammadurasheed/scholarstream/internal/logger"
	"github.com/Muhammadurasheed/scholarstream/internal/models"
	"github.com/Muhammadurasheed/scholarstream/internal/snapshot"
	"github.com/Muhammadurasheed/scholarstream/internal/stream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	profile := models.UserProfile{}
	if cfg.ProfilePath != "" {
		profile, err = config.LoadProfile(cfg.ProfilePath)
		if err != nil {
			log.Fatalf("Failed to load profile: %v", err)
		}
	}

	tokens := auth.NewProvider(cfg.AuthToken)
	snapClient := snapshot.NewClient(cfg.SnapshotURL, tokens.Token, zl.Named("snapshot"))
	feedSvc := feed.NewService(snapClient.Fetch, zl.Named("feed"))

	streamClient := stream.NewClient(stream.Config{
		URL:          cfg.StreamURL,
		PingInterval: cfg.StreamPingInterval(),
		MaxAttempts:  cfg.StreamMaxAttempts,
	}, feedSvc, zl.Named("stream"))
	streamClient.SetToken(tokens.Token())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go feedSvc.RunSnapshotRefresh(ctx, cfg.SnapshotRefresh())

	if err := streamClient.Connect(ctx); err != nil {
		zl.Warn("initial stream connect failed, reconnecting in background", zap.Error(err))
	}
	defer streamClient.Close()

	// Token rotations reconnect the stream with the fresh token.
	go func() {
		rotations := tokens.Subscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case tok := <-rotations:
				streamClient.SetToken(tok)
				if err := streamClient.Reconnect(ctx); err != nil {
					zl.Warn("reconnect with rotated token failed", zap.Error(err))
				}
			}
		}
	}()

	srv := api.NewServer(feedSvc, func() models.UserProfile { return profile }, zl.Named("api"))
	go func() {
		<-ctx.Done()
		srv.Echo.Shutdown(context.Background())
	}()

	zl.Info("server starting", zap.String("port", cfg.Port))
	if err := srv.Start(cfg.Port); err != nil {
		zl.Info("server stopped", zap.Error(err))
	}
}
