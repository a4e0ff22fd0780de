// Package main is the entry point for the Lightbox admin CLI.
// This tool provides administrative commands for managing user accounts
// directly against the database, bypassing the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/lightbox/internal/config"
	"github.com/prn-tf/lightbox/internal/domain"
	"github.com/prn-tf/lightbox/internal/repository"
	"github.com/prn-tf/lightbox/internal/repository/postgres"
	"github.com/prn-tf/lightbox/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Lightbox Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user subcommand required (create)")
	}

	switch args[0] {
	case "create":
		return runUserCreate(args[1:])
	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func runUserCreate(args []string) error {
	fs := flag.NewFlagSet("user create", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	username := fs.String("username", "", "username (3-255 characters)")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := domain.ValidateUsername(*username); err != nil {
		return err
	}
	if err := domain.ValidateEmail(*email); err != nil {
		return err
	}
	if err := domain.ValidatePassword(*password); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	userRepo, closeDB, err := openUserRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(*username, *email, string(hash))
	if err := userRepo.Create(ctx, user); err != nil {
		return err
	}

	fmt.Printf("Created user %q (ID %d)\n", user.Username, user.ID)
	return nil
}

func openUserRepository(ctx context.Context, cfg *config.Config) (repository.UserRepository, func(), error) {
	logger := zerolog.Nop()

	if cfg.Database.IsEmbedded() {
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), func() { _ = db.Close() }, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewUserRepository(db), func() { _ = db.Close() }, nil
}

func printUsage() {
	fmt.Println(`Lightbox Admin CLI

Usage:
  lightbox-admin <command> [arguments]

Commands:
  user create   Create a user account
  version       Print version information
  help          Show this help message

Examples:
  lightbox-admin user create -username admin -email admin@example.com -password 'Sup3rSecret!'
  lightbox-admin user create -config ./configs/config.yaml -username admin -email admin@example.com -password 'Sup3rSecret!'`)
}
