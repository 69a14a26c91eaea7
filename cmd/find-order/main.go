package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/claydohscope/storefront/internal/catalog"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-order/main.go <bkash_trxid | #order_id>")
		fmt.Println("Example: go run cmd/find-order/main.go 8N7A6B5C4D")
		os.Exit(1)
	}
	needle := strings.TrimSpace(os.Args[1])

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

	fmt.Printf("🔍 Searching for order: %s\n\n", needle)

	orders, err := findOrders(ctx, repos, needle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
		os.Exit(1)
	}

	if len(orders) == 0 {
		fmt.Printf("❌ Order not found. Recent orders:\n\n")
		recent, err := repos.Order.List(ctx)
		if err == nil {
			for i, o := range recent {
				if i >= 10 {
					break
				}
				fmt.Printf("  - #%d TrxID: %s, Status: %s, Customer: %s, Created: %s\n",
					o.ID, o.PaymentRef, o.Status, o.CustomerName, o.CreatedAt.Format("2006-01-02 15:04:05"))
			}
		}
		os.Exit(1)
	}

	if len(orders) > 1 {
		fmt.Printf("⚠️  %d orders share this transaction ID; check for a reused payment.\n\n", len(orders))
	}
	for _, o := range orders {
		printOrder(ctx, repos, unit, cfg.Port, o)
	}
}

// findOrders treats "#123" or a bare number with no payment match as an order id
func findOrders(ctx context.Context, repos *repository.Repositories, needle string) ([]*domain.Order, error) {
	if !strings.HasPrefix(needle, "#") {
		orders, err := repos.Order.FindByPaymentRef(ctx, needle)
		if err != nil || len(orders) > 0 {
			return orders, err
		}
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(needle, "#"), 10, 64)
	if err != nil {
		return nil, nil
	}
	order, err := repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, nil
	}
	return []*domain.Order{order}, nil
}

func printOrder(ctx context.Context, repos *repository.Repositories, unit currency.Unit, port string, o *domain.Order) {
	fmt.Printf("✅ Order #%d\n", o.ID)
	fmt.Printf("Status: %s\n", o.Status)
	fmt.Printf("Customer: %s (%s)\n", o.CustomerName, o.CustomerPhone)
	fmt.Printf("Address: %s\n", o.CustomerAddress)
	fmt.Printf("bKash TrxID: %s\n", o.PaymentRef)
	fmt.Printf("Total: %s\n", catalog.FormatPrice(unit, o.Details.Total))
	fmt.Printf("Created At: %s\n", o.CreatedAt.Format("2006-01-02 15:04:05"))

	events, err := repos.OrderEvent.GetByOrderID(ctx, o.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load events: %v\n", err)
	}
	for _, e := range events {
		fmt.Printf("  [%s] %s %v\n", e.CreatedAt.Format("2006-01-02 15:04"), e.EventType, e.EventData)
	}
	fmt.Printf("\nTo confirm payment:\n")
	fmt.Printf("curl -X PATCH -H \"Authorization: Bearer $TOKEN\" -d '{\"status\":\"confirmed\"}' http://localhost:%s/api/admin/orders/%d\n\n", port, o.ID)
}

