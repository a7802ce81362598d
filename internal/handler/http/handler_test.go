package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trendzone/storefront/internal/auth"
	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/event"
	"github.com/trendzone/storefront/internal/repository"
	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/health"
	pkgkafka "github.com/trendzone/storefront/pkg/kafka"
	"github.com/trendzone/storefront/pkg/middleware"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) Create(ctx context.Context, admin *domain.AdminUser) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *mockAdminRepo) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *mockAdminRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.AdminUser, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *mockAdminRepo) List(ctx context.Context) ([]domain.AdminUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdminUser), args.Error(1)
}

func (m *mockAdminRepo) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) ListActive(ctx context.Context, kind domain.PrincipalKind, limit int) ([]domain.RefreshToken, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) Revoke(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) RevokeAllForPrincipal(ctx context.Context, principalID string, kind domain.PrincipalKind) error {
	args := m.Called(ctx, principalID, kind)
	return args.Error(0)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, orderID, fromStatus, toStatus, changedBy, note string) error {
	args := m.Called(ctx, orderID, fromStatus, toStatus, changedBy, note)
	return args.Error(0)
}

func (m *mockOrderRepo) ListHistory(ctx context.Context, orderID string) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusHistoryEntry), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockBannerRepo struct {
	mock.Mock
}

func (m *mockBannerRepo) Create(ctx context.Context, banner *domain.Banner) error {
	args := m.Called(ctx, banner)
	return args.Error(0)
}

func (m *mockBannerRepo) ListActive(ctx context.Context) ([]domain.Banner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Banner), args.Error(1)
}

func (m *mockBannerRepo) List(ctx context.Context) ([]domain.Banner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Banner), args.Error(1)
}

func (m *mockBannerRepo) Update(ctx context.Context, banner *domain.Banner) error {
	args := m.Called(ctx, banner)
	return args.Error(0)
}

func (m *mockBannerRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepo) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	args := m.Called(ctx, cart, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepo) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// ============================================================================
// Test Fixture
// ============================================================================

const (
	testUserID    = "550e8400-e29b-41d4-a716-446655440001"
	testAdminID   = "550e8400-e29b-41d4-a716-446655440002"
	testOrderID   = "550e8400-e29b-41d4-a716-446655440003"
	testProductID = "550e8400-e29b-41d4-a716-446655440004"

	testUserPassword  = "SecretPass1"
	testAdminPassword = "AdminPass1"
)

// fixture bundles the mock stores behind a fully wired router.
type fixture struct {
	router http.Handler
	codec  *auth.TokenCodec

	users    *mockUserRepo
	admins   *mockAdminRepo
	tokens   *mockTokenRepo
	orders   *mockOrderRepo
	products *mockProductRepo
	banners  *mockBannerRepo
	carts    *mockCartRepo
}

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    new(mockUserRepo),
		admins:   new(mockAdminRepo),
		tokens:   new(mockTokenRepo),
		orders:   new(mockOrderRepo),
		products: new(mockProductRepo),
		banners:  new(mockBannerRepo),
		carts:    new(mockCartRepo),
	}

	logger := handlerTestLogger()
	f.codec = auth.NewTokenCodec("test-secret-key-for-testing", 15*time.Minute)

	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	kafkaCfg.Async = true
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)

	userSessions := service.NewUserSessionManager(f.users, f.tokens, f.codec, 30*24*time.Hour, logger)
	adminSessions := service.NewAdminSessionManager(f.admins, f.tokens, f.codec, 30*24*time.Hour, false, logger)

	f.router = NewRouter(RouterConfig{
		Users:         service.NewUserService(f.users, f.tokens, producer, logger),
		Admins:        service.NewAdminService(f.admins, f.users, f.tokens, logger),
		Orders:        service.NewOrderService(f.orders, producer, nil, logger),
		Catalog:       service.NewCatalogService(f.products, logger),
		Carts:         service.NewCartService(f.carts, f.products, logger),
		Content:       service.NewContentService(f.banners, logger),
		UserSessions:  userSessions,
		AdminSessions: adminSessions,
		Health:        health.NewHandler(),
		Logger:        logger,
		CORS:          middleware.DefaultCORSConfig(),
	})

	return f
}

func hashForTest(t *testing.T, plaintext string) string {
	t.Helper()
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

func activeUser(t *testing.T) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	return &domain.User{
		ID:           testUserID,
		Email:        "shopper@example.com",
		PasswordHash: hashForTest(t, testUserPassword),
		FirstName:    "Ada",
		LastName:     "Amadi",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func activeAdmin(t *testing.T, role string) *domain.AdminUser {
	t.Helper()
	now := time.Now().UTC()
	return &domain.AdminUser{
		ID:           testAdminID,
		Username:     "ops",
		Email:        "ops@example.com",
		PasswordHash: hashForTest(t, testAdminPassword),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func sampleOrder(status string) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:     testOrderID,
		UserID: testUserID,
		Status: status,
		Items: []domain.OrderItem{
			{ID: "item-1", OrderID: testOrderID, ProductID: testProductID, Quantity: 2, PriceCents: 1250},
		},
		TotalCents: 2500,
		Currency:   "USD",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:         testProductID,
		Name:       "Wireless Mouse",
		PriceCents: 1250,
		Currency:   "USD",
		Category:   "electronics",
		InStock:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// asUser attaches a signed user access cookie to the request.
func (f *fixture) asUser(t *testing.T, req *http.Request) {
	t.Helper()
	token, err := f.codec.Sign(testUserID, domain.PrincipalUser)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: userAccessCookie, Value: token})
}

// asAdmin attaches a signed admin access cookie and stubs the per-request
// active check with an admin of the given role.
func (f *fixture) asAdmin(t *testing.T, req *http.Request, role string) {
	t.Helper()
	f.admins.On("GetByID", mock.Anything, testAdminID).Return(activeAdmin(t, role), nil)
	token, err := f.codec.Sign(testAdminID, domain.PrincipalAdmin)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: adminAccessCookie, Value: token})
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// cookieByName fetches a response cookie, failing the test when absent.
func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
