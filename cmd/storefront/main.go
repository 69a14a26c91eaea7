package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/claydohscope/storefront/internal/admin"
	"github.com/claydohscope/storefront/internal/cart"
	"github.com/claydohscope/storefront/internal/catalog"
	"github.com/claydohscope/storefront/internal/checkout"
	"github.com/claydohscope/storefront/internal/client"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/cue"
	"github.com/claydohscope/storefront/internal/notify"
)

const usage = `usage: storefront <command> [args]

shop:
  products                      list the catalog
  add <product-id>              add one unit to the cart
  cart                          show the cart
  qty <product-id> <n>          set a quantity (n >= 1)
  remove <product-id>           remove a line
  clear                         empty the cart
  checkout [flags]              place the order (-name -phone -address -trx -notes)
  shell                         interactive session

admin:
  admin login <user> <pass>     dashboard login (cookie)
  admin check                   check the dashboard cookie
  admin signin <email> <pass>   sign in for admin data routes
  admin signout
  admin products                list products
  admin products add [flags]    add a product (-name -price -description -image -image-url)
  admin media                   list media
  admin media add [flags]       upload media (-title -type -file -caption -poster)
  admin orders                  list orders
  admin orders status <id> <s>  set an order status
`

type app struct {
	cfg    *config.ClientConfig
	logger *zap.Logger
	out    io.Writer

	api      *client.Client
	cart     *cart.Store
	catalog  *catalog.View
	checkout *checkout.Flow

	session  *admin.Session
	products *admin.ProductsView
	media    *admin.MediaView
	orders   *admin.OrdersView

	closers []func() error
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.close()

	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		a.close()
		os.Exit(1)
	}
}

// newLogger writes warnings and above to stderr so command output stays clean
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.WarnLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func newApp(ctx context.Context, cfg *config.ClientConfig, logger *zap.Logger, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger, out: out}

	a.api = client.New(cfg.APIURL, logger)
	if err := a.restoreAuth(); err != nil {
		logger.Warn("Ignoring saved admin session", zap.Error(err))
	}

	storage, err := a.newCartStorage(ctx)
	if err != nil {
		return nil, err
	}

	var sink cue.Sink = cue.NopSink{}
	if cfg.Sound {
		sink = cue.BellSink{W: os.Stderr}
	}
	cues := cue.NewPlayer(sink)
	toaster := notify.NewToaster(notify.WithOnChange(func(t notify.Toast) {
		if t.Visible {
			fmt.Fprintf(out, "» %s\n", t.Message)
		}
	}))

	a.cart = cart.NewStore(ctx, storage,
		cart.WithLogger(logger.Named("cart")),
		cart.WithToaster(toaster),
		cart.WithCues(cues),
	)
	a.closers = append(a.closers, func() error { a.cart.Close(); return nil })

	a.catalog = catalog.NewView(a.api, a.cart, cfg.Currency, logger.Named("catalog"))
	a.checkout = checkout.NewFlow(a.cart, a.api, cues, logger.Named("checkout"))

	a.session = admin.NewSession(a.api, cfg.AdminEmail, logger.Named("admin"))
	a.products = admin.NewProductsView(a.api, a.api)
	a.media = admin.NewMediaView(a.api, a.api)
	a.orders = admin.NewOrdersView(a.api)
	return a, nil
}

// newCartStorage keeps the cart in Redis when CART_REDIS_URL is set, otherwise in DataDir
func (a *app) newCartStorage(ctx context.Context) (cart.Storage, error) {
	if a.cfg.CartRedisURL != "" {
		rs, err := cart.NewRedisStorage(ctx, a.cfg.CartRedisURL, "claydohscope")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to cart redis: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		return rs, nil
	}
	fs, err := cart.NewFileStorage(a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart storage: %w", err)
	}
	return fs, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "products":
		return a.cmdProducts(ctx)
	case "add":
		return a.cmdAdd(ctx, args[1:])
	case "cart":
		return a.cmdCart()
	case "qty":
		return a.cmdQty(ctx, args[1:])
	case "remove":
		return a.cmdRemove(ctx, args[1:])
	case "clear":
		a.cart.ClearCart(ctx)
		fmt.Fprintln(a.out, "Cart cleared")
		return nil
	case "checkout":
		return a.cmdCheckout(ctx, args[1:])
	case "admin":
		return a.cmdAdmin(ctx, args[1:])
	case "shell":
		return a.shell(ctx, os.Stdin)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
}
