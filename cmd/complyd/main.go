// comply/cmd/complyd/main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"rgehrsitz/comply/pkg/logging"
	"rgehrsitz/comply/pkg/rules"
	"rgehrsitz/comply/pkg/store"
)

// Config represents the application configuration
type Config struct {
	ListenAddress  string
	RulesFile      string
	ExprRulesFile  string
	ReportsDir     string
	LogLevel       string
	LogDestination string
	RedisEnabled   bool
	RedisAddress   string
	RedisPassword  string
	RedisDB        int
	UpdateInterval int
}

// Dependencies represents the external collaborators of the service
type Dependencies struct {
	Rules     *rules.Ruleset
	ExprRules *rules.ExprRuleset
	Publisher store.Publisher
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

func run(ctx context.Context, args []string) error {
	config, err := parseConfig(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := logging.ConfigureLogger(config.LogLevel, config.LogDestination); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}

	deps, err := setupDependencies(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer deps.Publisher.Close()

	return serve(ctx, deps, config)
}

func parseConfig(args []string) (*Config, error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	configFile := flags.String("config", "", "Path to configuration file")
	if err := flags.Parse(args[1:]); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("server.listen_address", ":8080")
	v.SetDefault("server.reports_dir", "reports")
	v.SetDefault("rules.structured", "ruleset.json")
	v.SetDefault("rules.expression", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "console")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.database", 0)
	v.SetDefault("events.update_interval", 5)

	if *configFile == "" {
		v.SetConfigName("comply_config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.comply")
		v.AddConfigPath("/etc/comply")
	} else {
		v.SetConfigFile(*configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || *configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Info().Msg("No configuration file found, using defaults")
	}

	return &Config{
		ListenAddress:  v.GetString("server.listen_address"),
		RulesFile:      v.GetString("rules.structured"),
		ExprRulesFile:  v.GetString("rules.expression"),
		ReportsDir:     v.GetString("server.reports_dir"),
		LogLevel:       v.GetString("logging.level"),
		LogDestination: v.GetString("logging.output"),
		RedisEnabled:   v.GetBool("redis.enabled"),
		RedisAddress:   v.GetString("redis.address"),
		RedisPassword:  v.GetString("redis.password"),
		RedisDB:        v.GetInt("redis.database"),
		UpdateInterval: v.GetInt("events.update_interval"),
	}, nil
}

func setupDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	ruleset, err := rules.LoadFile(config.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load structured ruleset: %w", err)
	}
	logging.Logger.Info().Str("path", config.RulesFile).Int("rules", len(ruleset.Rules)).Msg("Loaded structured ruleset")

	var exprRules *rules.ExprRuleset
	if config.ExprRulesFile != "" {
		exprRules, err = rules.LoadExprFile(config.ExprRulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load expression ruleset: %w", err)
		}
		logging.Logger.Info().Str("path", config.ExprRulesFile).Int("rules", len(exprRules.Rules)).Msg("Loaded expression ruleset")
	}

	var publisher store.Publisher = store.NopPublisher{}
	if config.RedisEnabled {
		publisher, err = store.NewRedisPublisher(ctx, config.RedisAddress, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, err
		}
	}

	return &Dependencies{
		Rules:     ruleset,
		ExprRules: exprRules,
		Publisher: publisher,
	}, nil
}

func serve(ctx context.Context, deps *Dependencies, config *Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := NewHub(time.Duration(config.UpdateInterval) * time.Second)
	go hub.Run(ctx)
	if rp, ok := deps.Publisher.(*store.RedisPublisher); ok {
		go tailReportEvents(ctx, rp, hub)
	}

	server := NewServer(deps, config.ReportsDir, hub)
	httpServer := &http.Server{
		Addr:    config.ListenAddress,
		Handler: server.Routes(),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", config.ListenAddress).Msg("Compliance service started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Info().Msg("Shutting down compliance service")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
