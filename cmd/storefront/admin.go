package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/admin"
	"github.com/claydohscope/storefront/internal/domain"
)

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: admin <login|check|signin|signout|products|media|orders>")
	}
	switch args[0] {
	case "login":
		return a.adminLogin(ctx, args[1:])
	case "check":
		ok, err := a.api.AdminCheck(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Not logged in")
			return nil
		}
		fmt.Fprintln(a.out, "Logged in")
		return nil
	case "signin":
		return a.adminSignIn(ctx, args[1:])
	case "signout":
		return a.adminSignOut(ctx)
	case "products":
		if len(args) > 1 && args[1] == "add" {
			return a.adminAddProduct(ctx, args[2:])
		}
		return a.adminListProducts(ctx)
	case "media":
		if len(args) > 1 && args[1] == "add" {
			return a.adminAddMedia(ctx, args[2:])
		}
		return a.adminListMedia(ctx)
	case "orders":
		if len(args) > 1 && args[1] == "status" {
			return a.adminSetStatus(ctx, args[2:])
		}
		return a.adminListOrders(ctx)
	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
}

func (a *app) adminLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: admin login <user> <pass>")
	}
	if err := a.api.AdminLogin(ctx, args[0], args[1]); err != nil {
		return err
	}
	if err := a.saveAuth(ctx, ""); err != nil {
		a.logger.Warn("Failed to save admin session", zap.Error(err))
	}
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

func (a *app) adminSignIn(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: admin signin <email> <pass>")
	}
	user, err := a.session.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.saveAuth(ctx, user.Email); err != nil {
		a.logger.Warn("Failed to save admin session", zap.Error(err))
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", user.Email)
	return nil
}

func (a *app) adminSignOut(ctx context.Context) error {
	err := a.session.SignOut(ctx)
	a.api.SetAdminCookie("")
	if serr := a.saveAuth(ctx, ""); serr != nil {
		a.logger.Warn("Failed to clear admin session", zap.Error(serr))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) adminListProducts(ctx context.Context) error {
	products, err := a.products.Refresh(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tIMAGE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, a.catalog.FormatPrice(p.Price), p.Image)
	}
	return w.Flush()
}

func (a *app) adminAddProduct(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin products add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "Product name")
	price := fs.String("price", "", "Price")
	description := fs.String("description", "", "Description")
	image := fs.String("image", "", "Local image file to upload")
	imageURL := fs.String("image-url", "", "Image URL when no file is uploaded")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := admin.ProductForm{Name: *name, Description: *description, ImageURL: *imageURL}
	if *price == "" {
		return fmt.Errorf("Missing fields: name and price are required")
	}
	p, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid price %q", *price)
	}
	form.Price = p

	if *image != "" {
		f, err := openFile(*image)
		if err != nil {
			return err
		}
		defer f.Close()
		form.Image = &admin.File{Name: filepath.Base(*image), Reader: f}
	}

	product, err := a.products.Add(ctx, form)
	if err != nil && product == nil {
		return err
	}
	fmt.Fprintf(a.out, "Added product #%d %s\n", product.ID, product.Name)
	return err
}

func (a *app) adminListMedia(ctx context.Context) error {
	media, err := a.media.Refresh(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTITLE\tADDED\tSRC")
	for _, m := range media {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Type, m.Title, m.CreatedAt.Local().Format(time.DateTime), m.Src)
	}
	return w.Flush()
}

func (a *app) adminAddMedia(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin media add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "Title")
	mediaType := fs.String("type", string(domain.MediaTypeImage), "video, gif or image")
	file := fs.String("file", "", "Media file")
	caption := fs.String("caption", "", "Caption")
	poster := fs.String("poster", "", "Poster image (videos only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := admin.MediaForm{Title: *title, Type: domain.MediaType(*mediaType), Caption: *caption}
	if *file != "" {
		f, err := openFile(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		form.File = &admin.File{Name: filepath.Base(*file), Reader: f}
	}
	if *poster != "" {
		f, err := openFile(*poster)
		if err != nil {
			return err
		}
		defer f.Close()
		form.Poster = &admin.File{Name: filepath.Base(*poster), Reader: f}
	}

	m, err := a.media.Add(ctx, form)
	if err != nil && m == nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %q\n", m.Type, m.Title)
	return err
}

func (a *app) adminListOrders(ctx context.Context) error {
	orders, err := a.orders.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders yet")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLACED\tCUSTOMER\tPHONE\tTRX\tITEMS\tTOTAL\tSTATUS")
	for _, o := range orders {
		items := 0
		for _, l := range o.Details.Items {
			items += l.Quantity
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			o.ID,
			o.CreatedAt.Local().Format(time.DateTime),
			o.CustomerName,
			o.CustomerPhone,
			o.PaymentRef,
			items,
			a.catalog.FormatPrice(o.Details.Total),
			o.Status,
		)
	}
	return w.Flush()
}

func (a *app) adminSetStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: admin orders status <id> <pending|confirmed|shipped|delivered>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}
	order, err := a.orders.SetStatus(ctx, id, domain.OrderStatus(args[1]))
	if err != nil && order == nil {
		return err
	}
	fmt.Fprintf(a.out, "Order #%d is now %s\n", order.ID, order.Status)
	return err
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
