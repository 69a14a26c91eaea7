package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/auth"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository/postgres"
	"github.com/claydohscope/storefront/pkg/errors"
)

func main() {
	emailFlag := flag.String("email", "", "Admin email (must match ADMIN_EMAIL to pass the admin allowlist)")
	passwordFlag := flag.String("password", "", "Admin password")
	resetFlag := flag.Bool("reset", false, "Replace the password of an existing account")
	flag.Parse()

	email := strings.TrimSpace(*emailFlag)
	password := *passwordFlag
	if email == "" && flag.NArg() >= 2 {
		email = strings.TrimSpace(flag.Arg(0))
		password = flag.Arg(1)
	}
	if email == "" || password == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/create-admin --email owner@example.com --password \"a long password\"")
		fmt.Println("  go run ./cmd/create-admin --email owner@example.com --password \"new password\" --reset")
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintf(os.Stderr, "Error: password must be at least 8 characters.\n")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)
	ctx := context.Background()

	if *resetFlag {
		user, err := repos.AdminUser.GetByEmail(ctx, email)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to find admin: %v\n", err)
			os.Exit(1)
		}
		if err := repos.AdminUser.UpdatePassword(ctx, user.ID, hash); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to update password: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Password updated for %s\n", user.Email)
		return
	}

	user := &domain.AdminUser{Email: email, PasswordHash: hash}
	if err := repos.AdminUser.Create(ctx, user); err != nil {
		if _, ok := err.(*errors.ErrConflict); ok {
			fmt.Fprintf(os.Stderr, "%v (use --reset to change its password)\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to create admin: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("✅ Admin created successfully!\n\n")
	fmt.Printf("Admin ID: %s\n", user.ID.String())
	fmt.Printf("Email: %s\n", user.Email)
	if cfg.Admin.AllowedEmail != "" && !strings.EqualFold(cfg.Admin.AllowedEmail, user.Email) {
		fmt.Printf("\n⚠️  ADMIN_EMAIL is %s: this account can sign in but admin routes will answer 403.\n", cfg.Admin.AllowedEmail)
	}
	if cfg.AuthProvider != config.AuthProviderLocal {
		fmt.Printf("\n⚠️  AUTH_PROVIDER is %s: local accounts are only used when AUTH_PROVIDER=local.\n", cfg.AuthProvider)
	}
}
