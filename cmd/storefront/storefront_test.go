package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/api"
	"github.com/claydohscope/storefront/internal/auth"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/events"
	"github.com/claydohscope/storefront/internal/objectstore"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/internal/repository/memory"
	"github.com/claydohscope/storefront/internal/service"
)

const (
	ownerEmail = "owner@claydohscope.test"
	ownerPass  = "glaze-and-fire"
)

type StorefrontSuite struct {
	suite.Suite

	repos   *repository.Repositories
	srv     *httptest.Server
	dataDir string
	out     bytes.Buffer
}

func TestStorefrontSuite(t *testing.T) {
	suite.Run(t, new(StorefrontSuite))
}

func (s *StorefrontSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctx := s.T().Context()
	storageDir := s.T().TempDir()
	s.dataDir = s.T().TempDir()
	s.out.Reset()

	s.repos = memory.NewRepositories()
	hash, err := auth.HashPassword(ownerPass)
	s.Require().NoError(err)
	s.Require().NoError(s.repos.AdminUser.Create(ctx, &domain.AdminUser{Email: ownerEmail, PasswordHash: hash}))
	for _, p := range []domain.Product{
		{Name: "Clay Bunny", Price: decimal.NewFromInt(450)},
		{Name: "Glazed Mug", Price: decimal.NewFromInt(800)},
	} {
		s.Require().NoError(s.repos.Product.Create(ctx, &p))
	}

	cfg := &config.Config{
		Environment: "test",
		Admin:       config.AdminConfig{AllowedEmail: ownerEmail, Username: "admin", Password: "letmein"},
		Storage:     config.StorageConfig{Provider: config.StorageProviderDisk, Dir: storageDir},
	}
	logger := zap.NewNop()
	gateway := auth.NewLocalGateway(s.repos.AdminUser, s.repos.Session, logger)

	objects, err := objectstore.NewDiskStore(storageDir, "http://example.test/media-files", logger)
	s.Require().NoError(err)
	s.srv = httptest.NewServer(api.NewRouter(cfg, api.Deps{
		Repos:   s.repos,
		Auth:    auth.NewAuthorizer(gateway, ownerEmail, logger),
		Orders:  service.NewOrderService(s.repos, events.NopPublisher{}, logger),
		Objects: objects,
	}, logger))
	s.T().Cleanup(s.srv.Close)
}

// newApp builds a fresh process-like app; state carries over only through dataDir
func (s *StorefrontSuite) newApp() *app {
	cfg := &config.ClientConfig{
		APIURL:   s.srv.URL,
		DataDir:  s.dataDir,
		Currency: "BDT",
	}
	a, err := newApp(s.T().Context(), cfg, zap.NewNop(), &s.out)
	s.Require().NoError(err)
	s.T().Cleanup(a.close)
	return a
}

func (s *StorefrontSuite) run(args ...string) error {
	return s.newApp().run(s.T().Context(), args)
}

func (s *StorefrontSuite) productID(name string) string {
	products, err := s.repos.Product.List(s.T().Context())
	s.Require().NoError(err)
	for _, p := range products {
		if p.Name == name {
			return fmt.Sprint(p.ID)
		}
	}
	s.FailNow("product not found", name)
	return ""
}

func (s *StorefrontSuite) TestProducts() {
	s.Require().NoError(s.run("products"))
	s.Contains(s.out.String(), "Clay Bunny")
	s.Contains(s.out.String(), "BDT 800")
}

func (s *StorefrontSuite) TestCartSurvivesRestart() {
	bunny := s.productID("Clay Bunny")
	s.Require().NoError(s.run("add", bunny))
	s.Require().NoError(s.run("add", bunny))
	s.Contains(s.out.String(), "Clay Bunny added to cart")

	a := s.newApp()
	s.Equal(2, a.cart.Count())
	s.True(decimal.NewFromInt(900).Equal(a.cart.Total()))

	s.Require().NoError(a.run(s.T().Context(), []string{"qty", bunny, "5"}))
	s.Equal(5, s.newApp().cart.Count())

	s.Error(s.run("qty", bunny, "0"))
	s.Equal(5, s.newApp().cart.Count())

	s.Require().NoError(s.run("remove", bunny))
	s.Zero(s.newApp().cart.Count())
}

func (s *StorefrontSuite) TestAddUnknownProduct() {
	s.Error(s.run("add", "999"))
	s.Zero(s.newApp().cart.Count())
}

func (s *StorefrontSuite) TestCheckout() {
	s.Require().NoError(s.run("add", s.productID("Clay Bunny")))
	s.Require().NoError(s.run("add", s.productID("Glazed Mug")))

	err := s.run("checkout", "-name", "Nadia", "-phone", "01700000000")
	s.Require().Error(err)
	s.Equal(2, s.newApp().cart.Count())

	s.Require().NoError(s.run("checkout",
		"-name", "Nadia", "-phone", "01700000000", "-address", "House 4, Dhaka", "-trx", "8N7A6B5C"))
	s.Contains(s.out.String(), "BDT 1250")
	s.Zero(s.newApp().cart.Count())

	orders, err := s.repos.Order.List(s.T().Context())
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Equal(domain.OrderStatusPending, orders[0].Status)
	s.Equal("8N7A6B5C", orders[0].PaymentRef)
	s.Len(orders[0].Details.Items, 2)
}

func (s *StorefrontSuite) TestCheckoutEmptyCart() {
	s.Error(s.run("checkout", "-name", "a", "-phone", "b", "-address", "c", "-trx", "d"))
}

func (s *StorefrontSuite) TestAdminFlow() {
	s.Error(s.run("admin", "orders"))

	s.Require().NoError(s.run("admin", "signin", ownerEmail, ownerPass))
	s.Contains(s.out.String(), "Signed in as "+ownerEmail)

	image := filepath.Join(s.T().TempDir(), "vase.png")
	s.Require().NoError(os.WriteFile(image, []byte("png"), 0o644))
	s.Require().NoError(s.run("admin", "products", "add", "-name", "Tall Vase", "-price", "1500", "-image", image))

	products, err := s.repos.Product.List(s.T().Context())
	s.Require().NoError(err)
	s.Require().Len(products, 3)
	var vase *domain.Product
	for _, p := range products {
		if p.Name == "Tall Vase" {
			vase = p
		}
	}
	s.Require().NotNil(vase)
	s.True(strings.HasPrefix(vase.Image, "http://example.test/media-files/product-images/"), vase.Image)

	s.Require().NoError(s.run("add", fmt.Sprint(vase.ID)))
	s.Require().NoError(s.run("checkout", "-name", "R", "-phone", "1", "-address", "A", "-trx", "T"))
	orders, err := s.repos.Order.List(s.T().Context())
	s.Require().NoError(err)
	s.Require().Len(orders, 1)

	s.Require().NoError(s.run("admin", "orders", "status", fmt.Sprint(orders[0].ID), "shipped"))
	s.Contains(s.out.String(), "is now shipped")
	s.Error(s.run("admin", "orders", "status", fmt.Sprint(orders[0].ID), "lost"))

	s.Require().NoError(s.run("admin", "media", "add", "-title", "Studio", "-type", "image", "-file", image))
	s.Require().NoError(s.run("admin", "media"))
	s.Contains(s.out.String(), "Studio")

	s.Require().NoError(s.run("admin", "signout"))
	s.Error(s.run("admin", "orders"))
}

func (s *StorefrontSuite) TestAdminCookieLogin() {
	s.Require().NoError(s.run("admin", "check"))
	s.Contains(s.out.String(), "Not logged in")

	s.Error(s.run("admin", "login", "admin", "wrong"))
	s.Require().NoError(s.run("admin", "login", "admin", "letmein"))

	s.out.Reset()
	s.Require().NoError(s.run("admin", "check"))
	s.Equal("Logged in\n", s.out.String())
}

func (s *StorefrontSuite) TestShell() {
	a := s.newApp()
	in := strings.NewReader("add " + s.productID("Glazed Mug") + "\ncart\nqty 1 \"\nbogus\nexit\nproducts\n")
	s.Require().NoError(a.shell(s.T().Context(), in))

	out := s.out.String()
	s.Contains(out, "Glazed Mug added to cart")
	s.Contains(out, "claydohscope [1]>")
	s.Contains(out, "unterminated quote")
	s.Contains(out, `unknown command "bogus"`)
	s.NotContains(out, "Clay Bunny", "products after exit must not run")
}
