package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/internal/repository/postgres"
	"github.com/claydohscope/storefront/pkg/errors"
)

func startPostgres(ctx context.Context) (*tcpostgres.PostgresContainer, string, error) {
	container, err := tcpostgres.Run(ctx, "postgres:17.6-alpine3.22",
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}
	return container, connStr, nil
}

type repositorySuite struct {
	suite.Suite

	container *tcpostgres.PostgresContainer
	db        *sql.DB
	repos     *repository.Repositories
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	suite.Run(t, new(repositorySuite))
}

func (s *repositorySuite) SetupSuite() {
	ctx := s.T().Context()

	container, connStr, err := startPostgres(ctx)
	s.Require().NoError(err)
	s.container = container

	s.db, err = postgres.Open(connStr)
	s.Require().NoError(err)

	s.Require().NoError(postgres.RunMigrations(ctx, s.db, nil))
	// a second run must be a no-op
	s.Require().NoError(postgres.RunMigrations(ctx, s.db, nil))

	s.repos = postgres.NewRepositories(s.db, nil)
}

func (s *repositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	s.NoError(testcontainers.TerminateContainer(s.container))
}

func (s *repositorySuite) SetupTest() {
	_, err := s.db.ExecContext(s.T().Context(),
		`TRUNCATE products, orders, media, order_events, idempotency_keys, admin_sessions, admin_users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func randomOrder() *domain.Order {
	lines := []domain.OrderLine{
		{ID: 1, Name: gofakeit.ProductName(), Price: decimal.NewFromInt(int64(gofakeit.Number(100, 2000))), Quantity: gofakeit.Number(1, 4)},
		{ID: 2, Name: gofakeit.ProductName(), Price: decimal.RequireFromString("99.50"), Quantity: 1},
	}
	return &domain.Order{
		CustomerName:    gofakeit.Name(),
		CustomerPhone:   gofakeit.Phone(),
		CustomerAddress: gofakeit.Address().Address,
		PaymentRef:      gofakeit.LetterN(10),
		Details:         domain.OrderDetails{Items: lines, Total: domain.LinesTotal(lines), Notes: gofakeit.Sentence(5)},
	}
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func (s *repositorySuite) TestProducts() {
	ctx := s.T().Context()

	p := &domain.Product{Name: "Clay Bunny", Description: "Hand-shaped", Price: decimal.RequireFromString("450.00"), Image: "http://x/bunny.png"}
	s.Require().NoError(s.repos.Product.Create(ctx, p))
	s.NotZero(p.ID)

	got, err := s.repos.Product.GetByID(ctx, p.ID)
	s.Require().NoError(err)
	if diff := cmp.Diff(p, got, decimalComparer, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		s.Failf("product mismatch", "(-want +got):\n%s", diff)
	}

	_, err = s.repos.Product.GetByID(ctx, p.ID+1000)
	var notFound *errors.ErrNotFound
	s.ErrorAs(err, &notFound)

	list, err := s.repos.Product.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *repositorySuite) TestOrders() {
	ctx := s.T().Context()

	first := randomOrder()
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	s.Require().NoError(s.repos.Order.Create(ctx, first))
	second := randomOrder()
	s.Require().NoError(s.repos.Order.Create(ctx, second))
	s.Equal(domain.OrderStatusPending, second.Status)

	got, err := s.repos.Order.GetByID(ctx, first.ID)
	s.Require().NoError(err)
	if diff := cmp.Diff(first.Details, got.Details, decimalComparer); diff != "" {
		s.Failf("order details mismatch", "(-want +got):\n%s", diff)
	}
	s.Equal(first.PaymentRef, got.PaymentRef)

	list, err := s.repos.Order.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)

	first.PaymentRef = strings.ToUpper(first.PaymentRef)
	_, err = s.db.ExecContext(ctx, `UPDATE orders SET bkash_trxid = $1 WHERE id = $2`, first.PaymentRef, first.ID)
	s.Require().NoError(err)
	found, err := s.repos.Order.FindByPaymentRef(ctx, " "+strings.ToLower(first.PaymentRef)+" ")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(first.ID, found[0].ID)

	none, err := s.repos.Order.FindByPaymentRef(ctx, "NO-SUCH-TRX")
	s.Require().NoError(err)
	s.Empty(none)

	updated, err := s.repos.Order.UpdateStatus(ctx, first.ID, domain.OrderStatusShipped)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusShipped, updated.Status)
	s.True(updated.UpdatedAt.After(first.UpdatedAt) || updated.UpdatedAt.Equal(first.UpdatedAt))

	_, err = s.repos.Order.UpdateStatus(ctx, second.ID+1000, domain.OrderStatusShipped)
	var notFound *errors.ErrNotFound
	s.ErrorAs(err, &notFound)

	// the schema refuses statuses outside the enum
	_, err = s.repos.Order.UpdateStatus(ctx, first.ID, "lost")
	s.Error(err)
}

func (s *repositorySuite) TestOrderEventsAndIdempotency() {
	ctx := s.T().Context()

	order := randomOrder()
	s.Require().NoError(s.repos.Order.Create(ctx, order))

	s.Require().NoError(s.repos.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: "order_created",
		EventData: map[string]interface{}{"status": "pending"},
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}))
	s.Require().NoError(s.repos.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: "status_changed",
	}))

	evs, err := s.repos.OrderEvent.GetByOrderID(ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(evs, 2)
	s.Equal("order_created", evs[0].EventType)
	s.Equal("pending", evs[0].EventData["status"])
	s.Equal("status_changed", evs[1].EventType)

	key, err := s.repos.IdempotencyKey.GetByKey(ctx, "missing")
	s.Require().NoError(err)
	s.Nil(key)

	s.Require().NoError(s.repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{Key: "k-1", OrderID: order.ID, RequestHash: "abc"}))
	key, err = s.repos.IdempotencyKey.GetByKey(ctx, "k-1")
	s.Require().NoError(err)
	s.Require().NotNil(key)
	s.Equal(order.ID, key.OrderID)
	s.Equal("abc", key.RequestHash)

	s.Error(s.repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{Key: "k-1", OrderID: order.ID, RequestHash: "abc"}))
}

func (s *repositorySuite) TestMedia() {
	ctx := s.T().Context()

	caption := "Morning light"
	older := &domain.Media{Title: "Kiln", Type: domain.MediaTypeVideo, Src: "http://x/kiln.mp4", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &domain.Media{Title: "Studio", Type: domain.MediaTypeImage, Src: "http://x/studio.png", Caption: &caption}
	s.Require().NoError(s.repos.Media.Create(ctx, older))
	s.Require().NoError(s.repos.Media.Create(ctx, newer))

	list, err := s.repos.Media.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Require().NotNil(list[0].Caption)
	s.Equal(caption, *list[0].Caption)
	s.Nil(list[1].Caption)
	s.Nil(list[1].Poster)

	s.Error(s.repos.Media.Create(ctx, &domain.Media{Title: "Bad", Type: "audio", Src: "x"}))
}

func (s *repositorySuite) TestAdminUsersAndSessions() {
	ctx := s.T().Context()

	user := &domain.AdminUser{Email: "  Owner@ClayDohScope.test ", PasswordHash: "hash"}
	s.Require().NoError(s.repos.AdminUser.Create(ctx, user))

	got, err := s.repos.AdminUser.GetByEmail(ctx, "owner@claydohscope.test")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)

	err = s.repos.AdminUser.Create(ctx, &domain.AdminUser{Email: "owner@claydohscope.test", PasswordHash: "x"})
	var conflict *errors.ErrConflict
	s.ErrorAs(err, &conflict)

	s.Require().NoError(s.repos.AdminUser.UpdatePassword(ctx, user.ID, "new-hash"))
	got, err = s.repos.AdminUser.GetByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("new-hash", got.PasswordHash)

	now := time.Now().UTC()
	live := &domain.AdminSession{TokenLookup: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	stale := &domain.AdminSession{TokenLookup: "stale", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}
	s.Require().NoError(s.repos.Session.Create(ctx, live))
	s.Require().NoError(s.repos.Session.Create(ctx, stale))

	sess, err := s.repos.Session.GetByLookup(ctx, "live", now)
	s.Require().NoError(err)
	s.Require().NotNil(sess)
	s.Equal(user.ID, sess.UserID)

	sess, err = s.repos.Session.GetByLookup(ctx, "stale", now)
	s.Require().NoError(err)
	s.Nil(sess)

	purged, err := s.repos.Session.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Equal(int64(1), purged)

	s.Require().NoError(s.repos.Session.DeleteByLookup(ctx, "live"))
	sess, err = s.repos.Session.GetByLookup(ctx, "live", now)
	s.Require().NoError(err)
	s.Nil(sess)
}
