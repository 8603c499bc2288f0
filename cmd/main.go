package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/khinvi/spotify-apple-music-converter/internal/services"
	"github.com/khinvi/spotify-apple-music-converter/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify, "", logger); err == nil {
			svc.SetSearchRate(config.Converter.SearchRatePerSecond)
			spotifyService = svc
		}
	}

	var appleService *services.AppleMusicService
	if config.Credentials.Apple.DeveloperToken != "" {
		if svc, err := services.NewAppleMusicService(config.Credentials.Apple, "", logger); err == nil {
			svc.SetSearchRate(config.Converter.SearchRatePerSecond)
			svc.SetBatchSize(config.Converter.BatchSize)
			appleService = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Apple:   appleService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "s2am",
		Usage:    "Convert Spotify playlists to Apple Music",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
