package admin_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claydohscope/storefront/internal/admin"
	"github.com/claydohscope/storefront/internal/client"
	"github.com/claydohscope/storefront/internal/domain"
	pkgerrors "github.com/claydohscope/storefront/pkg/errors"
)

// fakeAPI is an in-memory stand-in for the storefront server
type fakeAPI struct {
	mu        sync.Mutex
	signedOut int
	uploads   []string
	uploadErr map[string]error
	products  []domain.Product
	media     []domain.Media
	orders    []domain.Order
	listCalls int
	createErr error
	block     chan struct{}
	entered   chan struct{}
}

func (f *fakeAPI) SignIn(ctx context.Context, email, password string) (*client.Session, error) {
	if password != "secret" {
		return nil, &pkgerrors.ErrUnauthorized{Message: "Invalid login credentials"}
	}
	return &client.Session{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour), User: domain.User{ID: "u1", Email: email}}, nil
}

func (f *fakeAPI) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut++
	return nil
}

func (f *fakeAPI) Upload(ctx context.Context, bucket, filename string, r io.Reader) (string, error) {
	if err := f.uploadErr[bucket]; err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, bucket+"/"+filename)
	return "https://cdn.example/" + bucket + "/" + filename, nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, in client.ProductInput) (*domain.Product, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Product{ID: int64(len(f.products) + 1), Name: in.Name, Description: in.Description, Price: in.Price, Image: in.Image}
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeAPI) CreateMedia(ctx context.Context, in client.MediaInput) (*domain.Media, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m := domain.Media{Title: in.Title, Type: in.Type, Src: in.Src, Caption: in.Caption, Poster: in.Poster, CreatedAt: time.Now()}
	f.media = append([]domain.Media{m}, f.media...)
	return &m, nil
}

func (f *fakeAPI) ListMedia(ctx context.Context) ([]domain.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]domain.Media(nil), f.media...), nil
}

func (f *fakeAPI) ListOrders(ctx context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]domain.Order(nil), f.orders...), nil
}

func (f *fakeAPI) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, &pkgerrors.ErrNotFound{Resource: "order", ID: "x"}
}

func file(name string) *admin.File {
	return &admin.File{Name: name, Reader: strings.NewReader(gofakeit.UUID())}
}

func TestSession_SignIn(t *testing.T) {
	tests := []struct {
		name        string
		allowed     string
		email       string
		password    string
		wantErr     error
		wantSignOut int
	}{
		{name: "allowed admin", allowed: "admin@claydoh.shop", email: "admin@claydoh.shop", password: "secret"},
		{name: "empty allowlist admits anyone", allowed: "", email: gofakeit.Email(), password: "secret"},
		{name: "other identity signed back out", allowed: "admin@claydoh.shop", email: "someone@claydoh.shop", password: "secret", wantErr: admin.ErrNotAdmin, wantSignOut: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			session := admin.NewSession(api, tt.allowed, nil)

			user, err := session.SignIn(t.Context(), tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Not authorized as admin", err.Error())
				assert.Nil(t, session.User())
				assert.Equal(t, tt.wantSignOut, api.signedOut)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, tt.email, session.User().Email)
			assert.Zero(t, api.signedOut)
		})
	}
}

func TestSession_BadCredentials(t *testing.T) {
	session := admin.NewSession(&fakeAPI{}, "", nil)

	_, err := session.SignIn(t.Context(), "a@b.c", "nope")

	var unauthorized *pkgerrors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.Nil(t, session.User())
}

func TestProductsView_Add(t *testing.T) {
	t.Run("uploads image then inserts and refetches", func(t *testing.T) {
		api := &fakeAPI{}
		view := admin.NewProductsView(api, api)

		product, err := view.Add(t.Context(), admin.ProductForm{
			Name:  "Bunny",
			Price: decimal.NewFromInt(500),
			Image: file("bunny.png"),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"product-images/bunny.png"}, api.uploads)
		assert.Equal(t, "https://cdn.example/product-images/bunny.png", product.Image)
		assert.Equal(t, 1, api.listCalls)
		require.Len(t, view.Products(), 1)
	})

	t.Run("image url used when no file", func(t *testing.T) {
		api := &fakeAPI{}
		view := admin.NewProductsView(api, api)

		product, err := view.Add(t.Context(), admin.ProductForm{Name: "Fox", Price: decimal.NewFromInt(1), ImageURL: "https://img/fox.jpg"})
		require.NoError(t, err)
		assert.Equal(t, "https://img/fox.jpg", product.Image)
		assert.Empty(t, api.uploads)
	})

	t.Run("failed upload creates nothing", func(t *testing.T) {
		api := &fakeAPI{uploadErr: map[string]error{domain.BucketProductImages: errors.New("bucket not found")}}
		view := admin.NewProductsView(api, api)

		_, err := view.Add(t.Context(), admin.ProductForm{Name: "Bunny", Price: decimal.NewFromInt(500), Image: file("b.png")})

		require.ErrorContains(t, err, "bucket not found")
		assert.Empty(t, api.products)
		assert.Zero(t, api.listCalls)
	})

	t.Run("name required", func(t *testing.T) {
		api := &fakeAPI{}
		view := admin.NewProductsView(api, api)

		_, err := view.Add(t.Context(), admin.ProductForm{Name: "  ", Price: decimal.NewFromInt(500)})

		var verr *pkgerrors.ErrValidation
		require.ErrorAs(t, err, &verr)
		assert.Empty(t, api.products)
	})

	t.Run("second add while first in flight is refused", func(t *testing.T) {
		api := &fakeAPI{block: make(chan struct{}), entered: make(chan struct{}, 1)}
		view := admin.NewProductsView(api, api)

		done := make(chan error, 1)
		go func() {
			_, err := view.Add(context.Background(), admin.ProductForm{Name: "A", Price: decimal.NewFromInt(1)})
			done <- err
		}()
		<-api.entered
		assert.True(t, view.Busy())

		_, err := view.Add(t.Context(), admin.ProductForm{Name: "B", Price: decimal.NewFromInt(2)})
		require.ErrorIs(t, err, admin.ErrBusy)

		close(api.block)
		require.NoError(t, <-done)
		assert.Len(t, api.products, 1)
	})
}

func TestMediaView_Add(t *testing.T) {
	tests := []struct {
		name        string
		form        admin.MediaForm
		uploadErr   map[string]error
		wantUploads []string
		wantPoster  bool
		wantErr     string
	}{
		{
			name:        "video with poster",
			form:        admin.MediaForm{Title: "Spin", Type: domain.MediaTypeVideo, File: file("spin.mp4"), Poster: file("spin.jpg")},
			wantUploads: []string{"media-videos/spin.mp4", "media-posters/spin.jpg"},
			wantPoster:  true,
		},
		{
			name:        "gif goes to images and ignores poster",
			form:        admin.MediaForm{Title: "Wave", Type: domain.MediaTypeGIF, File: file("wave.gif"), Poster: file("p.jpg")},
			wantUploads: []string{"media-images/wave.gif"},
		},
		{
			name:        "image",
			form:        admin.MediaForm{Title: "Shelf", Type: domain.MediaTypeImage, Caption: "new stock", File: file("shelf.png")},
			wantUploads: []string{"media-images/shelf.png"},
		},
		{
			name:    "file required",
			form:    admin.MediaForm{Title: "Nothing", Type: domain.MediaTypeImage},
			wantErr: "Please select a file to upload",
		},
		{
			name:    "unknown type",
			form:    admin.MediaForm{Title: "x", Type: "audio", File: file("a.mp3")},
			wantErr: "validation failed: type",
		},
		{
			name:        "poster upload failure aborts",
			form:        admin.MediaForm{Title: "Spin", Type: domain.MediaTypeVideo, File: file("spin.mp4"), Poster: file("spin.jpg")},
			uploadErr:   map[string]error{domain.BucketMediaPosters: errors.New("payload too large")},
			wantErr:     "payload too large",
			wantUploads: []string{"media-videos/spin.mp4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{uploadErr: tt.uploadErr}
			view := admin.NewMediaView(api, api)

			media, err := view.Add(t.Context(), tt.form)

			assert.Equal(t, tt.wantUploads, api.uploads)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				assert.Empty(t, api.media)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoster, media.Poster != nil)
			assert.Equal(t, 1, api.listCalls)
			assert.Len(t, view.Media(), 1)
		})
	}
}

func TestOrdersView_SetStatus(t *testing.T) {
	api := &fakeAPI{orders: []domain.Order{
		{ID: 2, Status: domain.OrderStatusPending},
		{ID: 1, Status: domain.OrderStatusPending},
	}}
	view := admin.NewOrdersView(api)

	orders, err := view.Refresh(t.Context())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	order, err := view.SetStatus(t.Context(), 1, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, domain.OrderStatusShipped, view.Orders()[1].Status)
	assert.Equal(t, 2, api.listCalls)

	_, err = view.SetStatus(t.Context(), 1, "lost")
	var verr *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &verr)

	_, err = view.SetStatus(t.Context(), 77, domain.OrderStatusConfirmed)
	var nf *pkgerrors.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.False(t, view.Busy())
}
