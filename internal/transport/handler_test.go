package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"vending-inventory/internal/middleware"
	"vending-inventory/internal/repository/memory"
	"vending-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(guard func(http.Handler) http.Handler) http.Handler {
	store := memory.NewStore()
	logger := zap.NewNop()

	r := chi.NewRouter()
	NewProductHandler(service.NewProductService(store), logger).RegisterRoutes(r, guard)
	NewMachineHandler(service.NewMachineService(store), logger).RegisterRoutes(r, guard)
	NewStockHandler(service.NewStockService(store), logger).RegisterRoutes(r, guard)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response.Error.Code
}

func TestDuplicateMachineNameIsConflict(t *testing.T) {
	h := newTestRouter(passthrough)

	w := do(t, h, http.MethodPost, "/api/vending_machines/create", map[string]string{"name": "Soda Zaaa", "location": "4th floor"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, "/api/vending_machines/create", map[string]string{"name": "Soda Zaaa", "location": "5th floor"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, codeDuplicateName, errorCode(t, w))

	w = do(t, h, http.MethodGet, "/api/vending_machines/all", nil)
	var machines []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machines))
	require.Len(t, machines, 1)
	assert.Equal(t, "4th floor", machines[0]["location"])
}

func TestStockFlowOverHTTP(t *testing.T) {
	h := newTestRouter(passthrough)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/vending_machines/create", map[string]string{"name": "Soda Zaaa", "location": "4th floor"}).Code)

	w := do(t, h, http.MethodPost, "/api/products/create", map[string]interface{}{"name": "Coke", "price": 25})
	require.Equal(t, http.StatusCreated, w.Code)
	var product map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, float64(1), product["id"])

	add := map[string]interface{}{"vending_machine_id": 1, "product_id": 1, "quantity": 10}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/stocks/add", add).Code)

	add["quantity"] = 5
	w = do(t, h, http.MethodPost, "/api/stocks/add", add)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, codeAlreadyStocked, errorCode(t, w))
	assert.Contains(t, w.Body.String(), "please edit or delete")

	w = do(t, h, http.MethodPut, "/api/stocks/1/1", map[string]int{"new_quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidInput, errorCode(t, w))

	w = do(t, h, http.MethodGet, "/api/stocks/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"Coke","quantity":10}]`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/api/products/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, codeProductInUse, errorCode(t, w))

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/api/vending_machines/1", nil).Code)

	w = do(t, h, http.MethodGet, "/api/stocks/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, codeNotFound, errorCode(t, w))

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/api/products/1", nil).Code)
}

func TestEditMachineOverHTTP(t *testing.T) {
	h := newTestRouter(passthrough)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/vending_machines/create", map[string]string{"name": "Soda Zaaa", "location": "4th floor"}).Code)

	w := do(t, h, http.MethodPut, "/api/vending_machines/1", map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)
	var machine map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machine))
	assert.Equal(t, "Soda Zaaa", machine["name"])
	assert.Equal(t, "4th floor", machine["location"])

	w = do(t, h, http.MethodPut, "/api/vending_machines/1", map[string]string{"new_location": "Lobby"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machine))
	assert.Equal(t, "Soda Zaaa", machine["name"])
	assert.Equal(t, "Lobby", machine["location"])

	w = do(t, h, http.MethodPut, "/api/vending_machines/7", map[string]string{"new_name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestValidation(t *testing.T) {
	h := newTestRouter(passthrough)

	cases := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/api/products/create", map[string]interface{}{"name": "Coke"}},
		{http.MethodPost, "/api/products/create", map[string]interface{}{"name": "Coke", "price": 0}},
		{http.MethodPost, "/api/vending_machines/create", map[string]string{"name": "Soda Zaaa"}},
		{http.MethodPost, "/api/stocks/add", map[string]interface{}{"vending_machine_id": 1, "product_id": 1}},
		{http.MethodGet, "/api/products/abc", nil},
		{http.MethodGet, "/api/stocks/0", nil},
	}
	for _, tc := range cases {
		w := do(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, codeInvalidInput, errorCode(t, w), "%s %s", tc.method, tc.path)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/products/create", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAmountsAboveIntegerRangeAreInvalidInput(t *testing.T) {
	h := newTestRouter(passthrough)

	w := do(t, h, http.MethodPost, "/api/products/create", map[string]interface{}{"name": "Coke", "price": 3000000000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidInput, errorCode(t, w))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/vending_machines/create", map[string]string{"name": "Soda Zaaa", "location": "4th floor"}).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/products/create", map[string]interface{}{"name": "Coke", "price": 25}).Code)

	w = do(t, h, http.MethodPost, "/api/stocks/add", map[string]interface{}{"vending_machine_id": 1, "product_id": 1, "quantity": 3000000000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidInput, errorCode(t, w))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/stocks/add", map[string]interface{}{"vending_machine_id": 1, "product_id": 1, "quantity": 10}).Code)

	w = do(t, h, http.MethodPut, "/api/stocks/1/1", map[string]interface{}{"new_quantity": 3000000000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidInput, errorCode(t, w))

	w = do(t, h, http.MethodGet, "/api/stocks/1", nil)
	assert.JSONEq(t, `[{"name":"Coke","quantity":10}]`, w.Body.String())
}

func TestAddStockReportsMissingReferences(t *testing.T) {
	h := newTestRouter(passthrough)

	w := do(t, h, http.MethodPost, "/api/stocks/add", map[string]interface{}{"vending_machine_id": 3, "product_id": 4, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "vending machine not found")
}

func TestSnapshot(t *testing.T) {
	h := newTestRouter(passthrough)

	w := do(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"vending_machines":[],"products":[],"stocks":[]}`, w.Body.String())

	for i := 0; i < 2; i++ {
		do(t, h, http.MethodPost, "/api/products/create", map[string]interface{}{"name": fmt.Sprintf("P%d", i), "price": 1})
	}

	var snapshot struct {
		Products []map[string]interface{} `json:"products"`
	}
	w = do(t, h, http.MethodGet, "/", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.Products, 2)
}

func TestGuardWrapsOnlyMutations(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
		})
	}
	h := newTestRouter(deny)

	for _, path := range []string{"/", "/api/products/all", "/api/vending_machines/all"} {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, path, nil).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/stocks/1", nil).Code)

	for _, route := range [][2]string{
		{http.MethodPost, "/api/products/create"},
		{http.MethodDelete, "/api/products/1"},
		{http.MethodPost, "/api/vending_machines/create"},
		{http.MethodPut, "/api/vending_machines/1"},
		{http.MethodDelete, "/api/vending_machines/1"},
		{http.MethodPost, "/api/stocks/add"},
		{http.MethodPut, "/api/stocks/1/1"},
		{http.MethodDelete, "/api/stocks/1/1"},
	} {
		assert.Equal(t, http.StatusUnauthorized, do(t, h, route[0], route[1], nil).Code, "%s %s", route[0], route[1])
	}
}
