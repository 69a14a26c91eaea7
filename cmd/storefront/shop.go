package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/claydohscope/storefront/internal/checkout"
)

func (a *app) cmdProducts(ctx context.Context) error {
	products, err := a.catalog.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products yet")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, a.catalog.FormatPrice(p.Price))
	}
	return w.Flush()
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: add <product-id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if _, ok := a.catalog.Find(id); !ok {
		if _, err := a.catalog.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
	}
	_, err = a.catalog.AddToCart(ctx, id)
	return err
}

func (a *app) cmdCart() error {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			it.ID, it.Name, it.Quantity, a.catalog.FormatPrice(it.Price), a.catalog.FormatPrice(it.Subtotal()))
	}
	fmt.Fprintf(w, "\t\t%d\t\t%s\n", a.cart.Count(), a.catalog.FormatPrice(a.cart.Total()))
	return w.Flush()
}

// cmdQty only sets quantities of 1 or more; removing a line goes through remove
func (a *app) cmdQty(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: qty <product-id> <n>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	if n < 1 {
		return fmt.Errorf("quantity must be at least 1 (use remove to drop the item)")
	}
	if !a.inCart(id) {
		return fmt.Errorf("product %d is not in the cart", id)
	}
	a.cart.UpdateQuantity(ctx, id, n)
	return nil
}

func (a *app) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <product-id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a.cart.RemoveItem(ctx, id)
	return nil
}

func (a *app) cmdCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "Full name")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Delivery address")
	trx := fs.String("trx", "", "bKash transaction ID")
	notes := fs.String("notes", "", "Order notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.cart.Count() == 0 {
		return fmt.Errorf("your cart is empty")
	}

	a.cart.OpenCheckout()
	a.checkout.SetForm(checkout.Form{
		Name:       *name,
		Phone:      *phone,
		Address:    *address,
		PaymentRef: *trx,
		Notes:      *notes,
	})
	order, err := a.checkout.Submit(ctx)
	if err != nil {
		a.cart.CloseCheckout()
		return err
	}

	fmt.Fprintf(a.out, "Order #%d placed (%s). We'll confirm once the payment is verified.\n",
		order.ID, a.catalog.FormatPrice(order.Details.Total))
	return nil
}

func (a *app) inCart(id int64) bool {
	for _, it := range a.cart.Items() {
		if it.ID == id {
			return true
		}
	}
	return false
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}
