package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/msoria/hookfetch/internal/config"
	"github.com/msoria/hookfetch/internal/logging"
	"github.com/msoria/hookfetch/internal/provider/github"
	"github.com/msoria/hookfetch/internal/resolver"
	"github.com/msoria/hookfetch/internal/server"
)

var version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "register":
		runRegister(os.Args[2:])
	case "version":
		fmt.Printf("hookfetch v%s\n", version)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: hookfetch <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve     Start the webhook server")
	fmt.Println("  register  Create the push webhook on the configured repository")
	fmt.Println("  version   Print version information")
}

// loadConfig loads the .env file and configuration shared by all commands.
func loadConfig(configPath, envFile string) (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("Warning: could not load env file %s: %v", envFile, err)
		}
	} else {
		godotenv.Load(".env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// No config file: defaults plus environment variables.
		return config.FromEnv(), nil
	}

	return config.Load(configPath)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to config file")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	fetcher := github.New(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)
	res := resolver.New(fetcher, time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second, logger)
	srv := server.New(cfg, res, logger)

	logger.Info().Str("repo", cfg.RepoFullName()).Msg("starting hookfetch")
	if err := srv.ListenAndServeWithShutdown(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runRegister(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to config file")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	hookURL := fs.String("url", "", "Public URL of the webhook endpoint (required)")
	fs.Parse(args)

	if *hookURL == "" {
		log.Fatal("register requires -url")
	}

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	p := github.New(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := p.RegisterWebhook(ctx, *hookURL, cfg.GitHub.WebhookSecret)
	if err != nil {
		log.Fatalf("Failed to create webhook: %v", err)
	}

	fmt.Printf("Webhook %d created on %s for %s\n", id, cfg.RepoFullName(), *hookURL)
}
