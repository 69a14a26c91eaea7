package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/catalog"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/repository/postgres"
)

func main() {
	search := flag.String("search", "", "Only print products whose name contains this text")
	flag.Parse()

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

	repo := postgres.NewProductRepository(db, logger)
	unit := catalog.ParseCurrency(cfg.Currency, logger)

	fmt.Println("🔍 Fetching catalog...")
	products, err := repo.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query products: %v\n", err)
		os.Exit(1)
	}

	needle := strings.ToLower(strings.TrimSpace(*search))
	count := 0
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		count++
		fmt.Printf("#%d %s\n", p.ID, p.Name)
		fmt.Printf("  Price: %s\n", catalog.FormatPrice(unit, p.Price))
		if p.Image == "" {
			fmt.Println("  ⚠️  No image")
		} else {
			fmt.Printf("  Image: %s\n", p.Image)
		}
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
	}

	fmt.Printf("\n✅ %d product(s)\n", count)
}
