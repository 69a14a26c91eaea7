package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/claydohscope/storefront/internal/client"
	"github.com/claydohscope/storefront/internal/domain"
	pkgerrors "github.com/claydohscope/storefront/pkg/errors"
)

// ProductsAPI is the catalog surface used by the products view
type ProductsAPI interface {
	CreateProduct(ctx context.Context, in client.ProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// ProductForm is the add-product form. Image is an optional file uploaded
// before the record is inserted; ImageURL is used when no file is given.
type ProductForm struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Image       *File
}

type ProductsView struct {
	api      ProductsAPI
	uploader Uploader
	inflight

	mu       sync.RWMutex
	products []domain.Product
}

func NewProductsView(api ProductsAPI, uploader Uploader) *ProductsView {
	return &ProductsView{api: api, uploader: uploader}
}

// Refresh refetches the full product list
func (v *ProductsView) Refresh(ctx context.Context) ([]domain.Product, error) {
	products, err := v.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.products = products
	v.mu.Unlock()
	return products, nil
}

func (v *ProductsView) Products() []domain.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Product, len(v.products))
	copy(out, v.products)
	return out
}

// Add uploads the image if any, inserts the product and refetches the list.
// A failed upload aborts before anything is inserted.
func (v *ProductsView) Add(ctx context.Context, form ProductForm) (*domain.Product, error) {
	if strings.TrimSpace(form.Name) == "" {
		return nil, &pkgerrors.ErrValidation{Message: "Missing fields: name and price are required", Fields: map[string]string{"name": "required"}}
	}
	if form.Price.IsNegative() {
		return nil, &pkgerrors.ErrValidation{Fields: map[string]string{"price": "must not be negative"}}
	}
	if err := v.begin(); err != nil {
		return nil, err
	}
	defer v.end()

	imageURL := form.ImageURL
	if form.Image != nil {
		u, err := v.uploader.Upload(ctx, domain.BucketProductImages, form.Image.Name, form.Image.Reader)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		imageURL = u
	}

	product, err := v.api.CreateProduct(ctx, client.ProductInput{
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Price:       form.Price,
		Image:       imageURL,
	})
	if err != nil {
		return nil, err
	}

	if _, err := v.Refresh(ctx); err != nil {
		return product, fmt.Errorf("product added but list refresh failed: %w", err)
	}
	return product, nil
}
