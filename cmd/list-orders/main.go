package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/catalog"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/repository/postgres"
)

func main() {
	limit := flag.Int("limit", 100, "Maximum number of orders to print")
	withEvents := flag.Bool("events", false, "Print each order's status history")
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

	repos := postgres.NewRepositories(db, logger)
	ctx := context.Background()
	unit := catalog.ParseCurrency(cfg.Currency, logger)

	orders, err := repos.Order.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}

	if len(orders) == 0 {
		fmt.Println("❌ No orders found in database.")
		return
	}

	fmt.Println("📋 Listing orders, newest first:")
	for i, order := range orders {
		if i >= *limit {
			break
		}
		fmt.Printf("Order #%d:\n", order.ID)
		fmt.Printf("  Status: %s\n", order.Status)
		fmt.Printf("  Customer: %s (%s)\n", order.CustomerName, order.CustomerPhone)
		fmt.Printf("  Address: %s\n", order.CustomerAddress)
		fmt.Printf("  bKash TrxID: %s\n", order.PaymentRef)
		for _, line := range order.Details.Items {
			fmt.Printf("    %d × %s @ %s\n", line.Quantity, line.Name, catalog.FormatPrice(unit, line.Price))
		}
		fmt.Printf("  Total: %s\n", catalog.FormatPrice(unit, order.Details.Total))
		if order.Details.Notes != "" {
			fmt.Printf("  Notes: %s\n", order.Details.Notes)
		}
		fmt.Printf("  Created: %s\n", order.CreatedAt.Format("2006-01-02 15:04:05"))

		if *withEvents {
			events, err := repos.OrderEvent.GetByOrderID(ctx, order.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  Failed to load events: %v\n", err)
			}
			for _, e := range events {
				fmt.Printf("    [%s] %s %v\n", e.CreatedAt.Format("2006-01-02 15:04"), e.EventType, e.EventData)
			}
		}
		fmt.Println()
	}

	fmt.Printf("✅ Total: %d order(s)\n", len(orders))
}
