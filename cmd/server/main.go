package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/franckalain/nutritiontracker/internal/bot"
	"github.com/franckalain/nutritiontracker/internal/config"
	"github.com/franckalain/nutritiontracker/internal/database"
	"github.com/franckalain/nutritiontracker/internal/logger"
	"github.com/franckalain/nutritiontracker/internal/server"
	"github.com/franckalain/nutritiontracker/internal/tracker"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "nutrition tracker:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New("nutrition", logger.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		Driver:        cfg.Storage.Driver,
		Path:          cfg.Storage.Path,
		MongoURI:      cfg.Storage.MongoURI,
		MongoDatabase: cfg.Storage.MongoDatabase,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer db.Close()
	log.Info("Storage ready", zap.String("driver", cfg.Storage.Driver), zap.String("path", cfg.Storage.Path))

	svc := tracker.New(db, log, tracker.WithLocation(loc))
	srv := server.New(svc, log, cfg.Server.Debug)

	var discordBot *bot.Bot
	if cfg.Discord.Token != "" {
		if discordBot, err = bot.New(cfg.Discord.Token, cfg.Discord.CommandPrefix, svc, log); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx, cfg.Server.Port)
	})
	if discordBot != nil {
		g.Go(func() error {
			return discordBot.Start(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited properly")
	return nil
}
