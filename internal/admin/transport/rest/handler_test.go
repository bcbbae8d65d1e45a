package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kutuku/marketplace/internal/admin"
	"github.com/kutuku/marketplace/internal/catalog"
	"github.com/kutuku/marketplace/internal/order"
	"github.com/kutuku/marketplace/internal/shop"
	"github.com/kutuku/marketplace/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockShopService is a mock implementation of the shop.Service interface
type mockShopService struct {
	shopID uuid.UUID
	error  error
}

func (m *mockShopService) List(_ context.Context) ([]shop.ShopResponse, error) {
	return nil, nil
}

func (m *mockShopService) GetByID(_ context.Context, _ uuid.UUID) (*shop.ShopResponse, error) {
	return nil, nil
}

func (m *mockShopService) GetBySlug(_ context.Context, _ string) (*shop.ShopResponse, error) {
	return nil, nil
}

func (m *mockShopService) VerifyCredentials(_ context.Context, _, _ string) (uuid.UUID, error) {
	if m.error != nil {
		return uuid.Nil, m.error
	}
	return m.shopID, nil
}

// mockCatalogService is a mock implementation of the catalog.Service interface
type mockCatalogService struct {
	product  *catalog.ProductResponse
	products []catalog.ProductResponse
	error    error
}

func (m *mockCatalogService) GetProduct(_ context.Context, _ uuid.UUID) (*catalog.ProductResponse, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) ListProducts(_ context.Context, _ catalog.ListFilter) ([]catalog.ProductResponse, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockCatalogService) ListCategories(_ context.Context) ([]catalog.CategoryResponse, error) {
	return nil, nil
}

func (m *mockCatalogService) DealOfTheDay(_ context.Context) (*catalog.DealResponse, error) {
	return nil, nil
}

func (m *mockCatalogService) CreateProduct(_ context.Context, _ uuid.UUID, _ catalog.CreateProductRequest) (*catalog.ProductResponse, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) UpdateProduct(_ context.Context, _, _ uuid.UUID, _ catalog.UpdateProductRequest) (*catalog.ProductResponse, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) DeleteProduct(_ context.Context, _, _ uuid.UUID, _ int32) error {
	return m.error
}

// mockOrderService is a mock implementation of the order.OrderService interface
type mockOrderService struct {
	order *order.OrderDto
	error error
}

func (m *mockOrderService) CreateFromCart(_ context.Context, _ uuid.UUID, _ order.ShippingAddressDto) (*order.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) FindByID(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*order.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) FindOrdersByUserID(_ context.Context, _ uuid.UUID, _, _ int32) ([]order.OrderDto, error) {
	return nil, nil
}

func (m *mockOrderService) UpdateStatus(_ context.Context, _ uuid.UUID, _ string, _ int32) (*order.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testSessions() *admin.SessionManager {
	return admin.NewSessionManager(config.AdminSessionConfig{
		Secret:   "0123456789abcdef0123456789abcdef",
		Lifetime: time.Hour,
	})
}

func Test_AdminAPI_Login(t *testing.T) {
	mockShopID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	t.Run("Success - token issued for valid credentials", func(t *testing.T) {
		// given
		sessions := testSessions()
		api := NewHandler(&mockShopService{shopID: mockShopID}, sessions, &mockCatalogService{}, &mockOrderService{}, testLogger())
		body := toJSON(t, LoginRequest{Login: "shop-1", Password: "changeme"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// when
		api.Login(rr, req)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, mockShopID.String(), resp.ShopID)
		verified, err := sessions.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, mockShopID, verified)
	})

	testCases := []struct {
		name         string
		mockShops    mockShopService
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Error - invalid credentials",
			mockShops:    mockShopService{error: shop.ErrInvalidCredentials},
			requestBody:  toJSON(t, LoginRequest{Login: "shop-1", Password: "wrong"}),
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"Invalid credentials"}`,
		},
		{
			name:         "Error - validation failed - missing password",
			requestBody:  `{"login":"shop-1"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Password":"failed on rule: required"}}`,
		},
		{
			name:         "Error - invalid json",
			requestBody:  `invalid json`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - service error",
			mockShops:    mockShopService{error: errors.New("service unavailable")},
			requestBody:  toJSON(t, LoginRequest{Login: "shop-1", Password: "changeme"}),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to login"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockShops, testSessions(), &mockCatalogService{}, &mockOrderService{}, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			// when
			api.Login(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_AdminAPI_CreateProduct(t *testing.T) {
	mockShopID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	mockCategoryID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174002")
	createdAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	created := &catalog.ProductResponse{
		ID:         mockProductID,
		ShopID:     mockShopID,
		CategoryID: mockCategoryID,
		Name:       "Canvas Sneaker",
		Price:      4999,
		Stock:      10,
		Version:    1,
		CreatedAt:  createdAt,
	}

	testCases := []struct {
		name         string
		mockCatalog  mockCatalogService
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:        "Success - product created",
			mockCatalog: mockCatalogService{product: created},
			requestBody: toJSON(t, catalog.CreateProductRequest{
				CategoryID: mockCategoryID,
				Name:       "Canvas Sneaker",
				Price:      4999,
				Stock:      10,
			}),
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, created),
		},
		{
			name:         "Error - invalid json",
			requestBody:  `invalid json`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - rejected by catalog",
			mockCatalog:  mockCatalogService{error: errors.New("validation failed")},
			requestBody:  toJSON(t, catalog.CreateProductRequest{CategoryID: mockCategoryID, Name: "x", Price: 1}),
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Failed to create product"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&mockShopService{}, testSessions(), &tc.mockCatalog, &mockOrderService{}, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(admin.WithShopID(context.Background(), mockShopID))
			rr := httptest.NewRecorder()

			// when
			api.CreateProduct(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_AdminAPI_UpdateProduct(t *testing.T) {
	mockShopID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	createdAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	updated := &catalog.ProductResponse{
		ID:        mockProductID,
		ShopID:    mockShopID,
		Name:      "Canvas Sneaker v2",
		Price:     5999,
		Version:   2,
		CreatedAt: createdAt,
	}
	validBody := toJSON(t, catalog.UpdateProductRequest{Name: "Canvas Sneaker v2", Price: 5999, Version: 1})

	testCases := []struct {
		name         string
		mockCatalog  mockCatalogService
		productID    string
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product updated",
			mockCatalog:  mockCatalogService{product: updated},
			productID:    mockProductID.String(),
			requestBody:  validBody,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, updated),
		},
		{
			name:         "Error - invalid id",
			productID:    "123-invalid-id",
			requestBody:  validBody,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid ID: 123-invalid-id"}`,
		},
		{
			name:         "Error - product not found",
			mockCatalog:  mockCatalogService{error: catalog.ErrProductNotFound},
			productID:    mockProductID.String(),
			requestBody:  validBody,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID ` + mockProductID.String() + ` not found"}`,
		},
		{
			name:         "Error - product owned by another shop",
			mockCatalog:  mockCatalogService{error: catalog.ErrAccessDenied},
			productID:    mockProductID.String(),
			requestBody:  validBody,
			expectedCode: http.StatusForbidden,
			expectedBody: `{"error":"Access denied"}`,
		},
		{
			name:         "Error - concurrent modification",
			mockCatalog:  mockCatalogService{error: catalog.ErrOptimisticLock},
			productID:    mockProductID.String(),
			requestBody:  validBody,
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"Product was modified concurrently"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&mockShopService{}, testSessions(), &tc.mockCatalog, &mockOrderService{}, testLogger())
			req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+tc.productID, strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("id", tc.productID)
			req = req.WithContext(admin.WithShopID(context.Background(), mockShopID))
			rr := httptest.NewRecorder()

			// when
			api.UpdateProduct(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_AdminAPI_DeleteProduct(t *testing.T) {
	mockShopID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")

	testCases := []struct {
		name         string
		mockCatalog  mockCatalogService
		query        string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product deleted",
			query:        "?version=1",
			expectedCode: http.StatusNoContent,
			expectedBody: "",
		},
		{
			name:         "Error - missing version",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"version url parameter is required"}`,
		},
		{
			name:         "Error - product not found",
			mockCatalog:  mockCatalogService{error: catalog.ErrProductNotFound},
			query:        "?version=1",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID ` + mockProductID.String() + ` not found"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&mockShopService{}, testSessions(), &tc.mockCatalog, &mockOrderService{}, testLogger())
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+mockProductID.String()+tc.query, nil)
			req.SetPathValue("id", mockProductID.String())
			req = req.WithContext(admin.WithShopID(context.Background(), mockShopID))
			rr := httptest.NewRecorder()

			// when
			api.DeleteProduct(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.expectedBody == "" {
				assert.Empty(t, rr.Body.String(), "response body should be empty")
			} else {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			}
		})
	}
}

func Test_AdminAPI_UpdateOrderStatus(t *testing.T) {
	mockShopID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockOrderID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")

	shipped := &order.OrderDto{
		ID:        mockOrderID,
		Number:    "ORD-1750000000000",
		Status:    "shipped",
		Version:   2,
		CreatedAt: "2025-06-15T12:00:00Z",
	}
	validBody := toJSON(t, UpdateOrderStatusRequest{Status: "shipped", Version: 1})

	testCases := []struct {
		name         string
		mockOrders   mockOrderService
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - status updated",
			mockOrders:   mockOrderService{order: shipped},
			requestBody:  validBody,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, shipped),
		},
		{
			name:         "Error - validation failed",
			requestBody:  `{"status":"","version":0}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Status":"failed on rule: required","Version":"failed on rule: required"}}`,
		},
		{
			name:         "Error - order not found",
			mockOrders:   mockOrderService{error: order.ErrOrderNotFound},
			requestBody:  validBody,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Order with ID ` + mockOrderID.String() + ` not found"}`,
		},
		{
			name:         "Error - concurrent modification",
			mockOrders:   mockOrderService{error: order.ErrOptimisticLock},
			requestBody:  validBody,
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"Order was modified concurrently"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&mockShopService{}, testSessions(), &mockCatalogService{}, &tc.mockOrders, testLogger())
			req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/orders/"+mockOrderID.String()+"/status", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("id", mockOrderID.String())
			req = req.WithContext(admin.WithShopID(context.Background(), mockShopID))
			rr := httptest.NewRecorder()

			// when
			api.UpdateOrderStatus(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}
