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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kutuku/marketplace/internal/cart"
	"github.com/kutuku/marketplace/internal/catalog"
	"github.com/kutuku/marketplace/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCartStore is an in-memory implementation of the cart.Store interface
type mockCartStore struct {
	items      map[string][]cart.Item
	replaceErr error
	deleteErr  error
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{items: make(map[string][]cart.Item)}
}

func (m *mockCartStore) Load(_ context.Context, key string) ([]cart.Item, error) {
	out := make([]cart.Item, len(m.items[key]))
	copy(out, m.items[key])
	return out, nil
}

func (m *mockCartStore) Replace(_ context.Context, key string, items []cart.Item) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	cp := make([]cart.Item, len(items))
	copy(cp, items)
	m.items[key] = cp
	return nil
}

func (m *mockCartStore) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.items, key)
	return nil
}

// mockCatalogService is a mock implementation of the catalog.Service interface
type mockCatalogService struct {
	product *catalog.ProductResponse
	error   error
}

func (m *mockCatalogService) GetProduct(_ context.Context, _ uuid.UUID) (*catalog.ProductResponse, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) ListProducts(_ context.Context, _ catalog.ListFilter) ([]catalog.ProductResponse, error) {
	return nil, nil
}

func (m *mockCatalogService) ListCategories(_ context.Context) ([]catalog.CategoryResponse, error) {
	return nil, nil
}

func (m *mockCatalogService) DealOfTheDay(_ context.Context) (*catalog.DealResponse, error) {
	return nil, nil
}

func (m *mockCatalogService) CreateProduct(_ context.Context, _ uuid.UUID, _ catalog.CreateProductRequest) (*catalog.ProductResponse, error) {
	return nil, nil
}

func (m *mockCatalogService) UpdateProduct(_ context.Context, _, _ uuid.UUID, _ catalog.UpdateProductRequest) (*catalog.ProductResponse, error) {
	return nil, nil
}

func (m *mockCatalogService) DeleteProduct(_ context.Context, _, _ uuid.UUID, _ int32) error {
	return nil
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

// guestRouter mounts the guest routes behind the device ID middleware, the
// same way the server wires them.
func guestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(web.DeviceIDMiddleware)
	h.RegisterGuestRoutes(r)
	return r
}

func Test_CartAPI_GuestDeviceHeader(t *testing.T) {
	testCases := []struct {
		name         string
		deviceID     string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - empty cart for a new device",
			deviceID:     "device-1",
			expectedCode: http.StatusOK,
			expectedBody: `{"items":[],"total_price":0,"item_count":0}`,
		},
		{
			name:         "Error - missing device header",
			deviceID:     "",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"X-Device-Id header is required"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			carts := cart.NewService(newMockCartStore(), newMockCartStore(), testLogger())
			api := NewHandler(carts, &mockCatalogService{}, testLogger())
			router := guestRouter(api)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/guest/cart", nil)
			if tc.deviceID != "" {
				req.Header.Set(web.XDeviceId, tc.deviceID)
			}
			rr := httptest.NewRecorder()

			// when
			router.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_CartAPI_GuestAddItem_Errors(t *testing.T) {
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockCatalog  mockCatalogService
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Error - invalid json",
			requestBody:  `invalid json`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - validation failed - quantity",
			requestBody:  toJSON(t, AddItemRequest{ProductID: mockProductID, Quantity: 0}),
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Quantity":"failed on rule: required"}}`,
		},
		{
			name:         "Error - product not found",
			mockCatalog:  mockCatalogService{error: catalog.ErrProductNotFound},
			requestBody:  toJSON(t, AddItemRequest{ProductID: mockProductID, Quantity: 1}),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID ` + mockProductID.String() + ` not found"}`,
		},
		{
			name:         "Error - catalog unavailable",
			mockCatalog:  mockCatalogService{error: errors.New("service unavailable")},
			requestBody:  toJSON(t, AddItemRequest{ProductID: mockProductID, Quantity: 1}),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to add item"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			carts := cart.NewService(newMockCartStore(), newMockCartStore(), testLogger())
			api := NewHandler(carts, &tc.mockCatalog, testLogger())
			router := guestRouter(api)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/guest/cart/items", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(web.XDeviceId, "device-1")
			rr := httptest.NewRecorder()

			// when
			router.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_CartAPI_GuestItemLifecycle(t *testing.T) {
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockShopID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")

	guestStore := newMockCartStore()
	carts := cart.NewService(newMockCartStore(), guestStore, testLogger())
	api := NewHandler(carts, &mockCatalogService{
		product: &catalog.ProductResponse{
			ID:     mockProductID,
			ShopID: mockShopID,
			Name:   "Canvas Sneaker",
			Price:  4999,
			Images: []string{"https://cdn.example.com/sneaker.jpg"},
		},
	}, testLogger())
	router := guestRouter(api)

	do := func(method, target, body string) (*httptest.ResponseRecorder, CartResponse) {
		t.Helper()
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(web.XDeviceId, "device-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		var resp CartResponse
		if rr.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		}
		return rr, resp
	}

	// Adding the same product and variant twice merges into one line.
	addBody := toJSON(t, AddItemRequest{ProductID: mockProductID, Quantity: 2, Color: "black", Size: "42"})
	rr, _ := do(http.MethodPost, "/api/v1/guest/cart/items", addBody)
	require.Equal(t, http.StatusOK, rr.Code)

	addOne := toJSON(t, AddItemRequest{ProductID: mockProductID, Quantity: 1, Color: "black", Size: "42"})
	rr, resp := do(http.MethodPost, "/api/v1/guest/cart/items", addOne)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int32(3), resp.Items[0].Quantity)
	assert.Equal(t, "Canvas Sneaker", resp.Items[0].Name)
	assert.Equal(t, int64(4999), resp.Items[0].UnitPrice)
	assert.Equal(t, int64(3*4999), resp.TotalPrice)
	assert.Equal(t, int32(3), resp.ItemCount)

	// The line survives in the store under the device key.
	require.Len(t, guestStore.items["device-1"], 1)

	// A different size is a separate line.
	otherSize := toJSON(t, AddItemRequest{ProductID: mockProductID, Quantity: 1, Color: "black", Size: "43"})
	rr, resp = do(http.MethodPost, "/api/v1/guest/cart/items", otherSize)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, resp.Items, 2)

	// Setting a line's quantity to zero removes it.
	lineID := resp.Items[1].ID
	rr, resp = do(http.MethodPut, "/api/v1/guest/cart/items/"+lineID.String(), toJSON(t, UpdateItemRequest{Quantity: 0}))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, resp.Items, 1)

	// Clearing empties both the response and the store.
	rr, _ = do(http.MethodDelete, "/api/v1/guest/cart", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, guestStore.items["device-1"])
}

func Test_CartAPI_Migrate(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	const deviceID = "device-1"

	guestItems := []cart.Item{{
		ID:       uuid.New(),
		Product:  cart.ProductSnapshot{ID: mockProductID, Name: "Canvas Sneaker", Price: 4999},
		Quantity: 2,
	}}

	testCases := []struct {
		name         string
		seedGuest    bool
		deleteErr    error
		noUser       bool
		noDevice     bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - guest cart merged",
			seedGuest:    true,
			expectedCode: http.StatusOK,
			expectedBody: `{"state":"done"}`,
		},
		{
			name:         "Success - nothing to migrate",
			expectedCode: http.StatusOK,
			expectedBody: `{"state":"idle"}`,
		},
		{
			name:         "Error - migration fails and reports state",
			seedGuest:    true,
			deleteErr:    errors.New("disk full"),
			expectedCode: http.StatusConflict,
			expectedBody: `{"state":"failed"}`,
		},
		{
			name:         "Error - missing device header",
			noDevice:     true,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"X-Device-Id header is required"}`,
		},
		{
			name:         "Error - unauthenticated",
			noUser:       true,
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"Unauthorized: Missing or invalid user ID"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			userStore := newMockCartStore()
			guestStore := newMockCartStore()
			if tc.seedGuest {
				guestStore.items[deviceID] = guestItems
			}
			guestStore.deleteErr = tc.deleteErr
			carts := cart.NewService(userStore, guestStore, testLogger())
			api := NewHandler(carts, &mockCatalogService{}, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/migrate", nil)
			ctx := context.Background()
			if !tc.noUser {
				ctx = web.WithUserID(ctx, mockUserID.String())
			}
			if !tc.noDevice {
				ctx = web.WithDeviceID(ctx, deviceID)
			}
			req = req.WithContext(ctx)
			rr := httptest.NewRecorder()

			// when
			api.Migrate(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")

			if tc.expectedBody == `{"state":"done"}` {
				// The guest lines moved into the user's cart and the guest
				// entry is gone.
				require.Len(t, userStore.items[mockUserID.String()], 1)
				assert.Equal(t, int32(2), userStore.items[mockUserID.String()][0].Quantity)
				assert.Empty(t, guestStore.items[deviceID])
			}
		})
	}
}
