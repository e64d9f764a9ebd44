package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wings-inventory/internal/config"
	"wings-inventory/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		Env:           "test",
		Port:          "0",
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
		SessionSweep:  time.Minute,
		FlashTTL:      time.Second,
		LowStockLevel: 10,
		Theme:         "classic",
		Backend:       config.Backend{AuthDomain: "wings-cafe.local", ProjectID: "wings-test", AppID: "app-1"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(testConfig(), store.NewMemoryBackend())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}

type reply struct {
	status   int
	location string
	raw      string
	body     map[string]any
}

func call(t *testing.T, srv *Server, method, path, token string, body any) reply {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	r := reply{status: resp.StatusCode, location: resp.Header.Get("Location"), raw: string(raw)}
	_ = json.Unmarshal(raw, &r.body)
	return r
}

func signUp(t *testing.T, srv *Server, email string) string {
	t.Helper()
	r := call(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, r.status, r.raw)
	token, _ := r.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestUnauthenticatedScreens(t *testing.T) {
	srv := newTestServer(t)

	r := call(t, srv, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "signin", r.body["screen"])
	assert.Nil(t, r.body["menu"])

	r = call(t, srv, http.MethodGet, "/signup", "", nil)
	assert.Equal(t, "signup", r.body["screen"])

	r = call(t, srv, http.MethodGet, "/product-list", "", nil)
	assert.Equal(t, http.StatusFound, r.status)
	assert.Equal(t, "/", r.location)

	r = call(t, srv, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestAuthenticatedScreens(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "owner@wings.cafe")

	r := call(t, srv, http.MethodGet, "/", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, "dashboard", r.body["screen"])
	assert.Len(t, r.body["menu"], 4)
	assert.NotNil(t, r.body["dashboard"])

	r = call(t, srv, http.MethodGet, "/signup", token, nil)
	assert.Equal(t, http.StatusFound, r.status)

	r = call(t, srv, http.MethodGet, "/product-form", token, nil)
	assert.Equal(t, "product-form", r.body["screen"])
	assert.NotNil(t, r.body["form"])
}

func TestSubmitProductThroughScreen(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "owner@wings.cafe")

	r := call(t, srv, http.MethodPost, "/api/v1/screens/product-form/form/submit", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)
	assert.Equal(t, "Please fill in all fields.", r.body["error"])

	r = call(t, srv, http.MethodPut, "/api/v1/screens/product-form/form/fields", token, map[string]any{
		"name": "Tea", "description": "Hot", "category": "Drinks", "price": 10, "quantity": "5",
	})
	require.Equal(t, http.StatusOK, r.status, r.raw)

	r = call(t, srv, http.MethodPost, "/api/v1/screens/product-form/form/submit", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, "Product added successfully!", r.body["success"])

	r = call(t, srv, http.MethodGet, "/api/v1/products", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	var products []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.raw), &products))
	require.Len(t, products, 1)
	assert.NotEmpty(t, products[0]["id"])
	assert.Equal(t, "Tea", products[0]["name"])
	assert.Equal(t, "Hot", products[0]["description"])
	assert.Equal(t, "Drinks", products[0]["category"])
	assert.Equal(t, "10", products[0]["price"])
	assert.EqualValues(t, 5, products[0]["quantity"])
}

func TestListFilterAndEditThroughScreen(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "owner@wings.cafe")

	for _, name := range []string{"Cake", "Cola"} {
		r := call(t, srv, http.MethodPost, "/api/v1/products", token, map[string]any{
			"name": name, "description": "d", "category": "c", "price": "1", "quantity": 3,
		})
		require.Equal(t, http.StatusCreated, r.status, r.raw)
	}

	r := call(t, srv, http.MethodPost, "/api/v1/screens/product-list/list/load", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.EqualValues(t, 2, r.body["total"])

	r = call(t, srv, http.MethodPut, "/api/v1/screens/product-list/list/filter", token, map[string]string{"query": "ca"})
	require.Equal(t, http.StatusOK, r.status)
	items := r.body["items"].([]any)
	require.Len(t, items, 1)
	cake := items[0].(map[string]any)
	assert.Equal(t, "Cake", cake["name"])

	r = call(t, srv, http.MethodPost, "/api/v1/screens/product-list/list/edit/"+cake["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	r = call(t, srv, http.MethodPut, "/api/v1/screens/product-list/list/edit", token, map[string]any{"quantity": 12})
	require.Equal(t, http.StatusOK, r.status, r.raw)
	r = call(t, srv, http.MethodPost, "/api/v1/screens/product-list/list/edit/commit", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, "Product updated successfully!", r.body["message"])

	r = call(t, srv, http.MethodGet, "/api/v1/products/"+cake["id"].(string), token, nil)
	assert.EqualValues(t, 12, r.body["quantity"])

	r = call(t, srv, http.MethodPut, "/api/v1/products/missing", token, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestSignOutEndsSession(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "a@b.com")

	r := call(t, srv, http.MethodPost, "/api/v1/auth/signout", token, nil)
	assert.Equal(t, http.StatusOK, r.status)

	r = call(t, srv, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": "a@b.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "Invalid credentials. Please try again.", r.body["error"])

	r = call(t, srv, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, false, r.body["authenticated"])

	r = call(t, srv, http.MethodGet, "/product-list", token, nil)
	assert.Equal(t, http.StatusFound, r.status)

	// signing out again still succeeds
	r = call(t, srv, http.MethodPost, "/api/v1/auth/signout", token, nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, 0, srv.Gate.WorkspaceCount())
}

func TestSignUpErrors(t *testing.T) {
	srv := newTestServer(t)
	signUp(t, srv, "a@b.com")

	r := call(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "a@b.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, r.status)

	r = call(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "c@d.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, r.status)
}

func TestPrivileges(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "owner@wings.cafe")
	clerk := signUp(t, srv, "clerk@wings.cafe")

	r := call(t, srv, http.MethodPost, "/api/v1/users", clerk, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "MASTER_ADMIN"})
	assert.Equal(t, http.StatusForbidden, r.status)

	r = call(t, srv, http.MethodPost, "/api/v1/users", owner, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "ADMIN"})
	assert.Equal(t, http.StatusCreated, r.status, r.raw)

	r = call(t, srv, http.MethodPost, "/api/v1/users", owner, map[string]string{"name": "Ghost", "email": "ghost@wings.cafe", "role": "ADMIN"})
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = call(t, srv, http.MethodGet, "/api/v1/users", clerk, nil)
	assert.Equal(t, http.StatusOK, r.status)

	r = call(t, srv, http.MethodDelete, "/api/v1/screens/user-management/list/items/x", clerk, nil)
	assert.Equal(t, http.StatusForbidden, r.status)
}

func TestExportAndConfig(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "owner@wings.cafe")

	r := call(t, srv, http.MethodPost, "/api/v1/products", token, map[string]any{
		"name": "Wings", "description": "Spicy", "category": "Food", "price": "2.5", "quantity": 4,
	})
	require.Equal(t, http.StatusCreated, r.status, r.raw)

	r = call(t, srv, http.MethodGet, "/api/v1/products/export", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	lines := strings.Split(strings.TrimSpace(r.raw), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,description,category,price,quantity,value", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",Wings,Spicy,Food,2.50,4,10.00"), lines[1])

	r = call(t, srv, http.MethodGet, "/api/v1/config", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	backend := r.body["backend"].(map[string]any)
	assert.Equal(t, "wings-test", backend["projectId"])
	assert.Equal(t, "classic", r.body["theme"].(map[string]any)["key"])
}

func TestStockTransactions(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "owner@wings.cafe")

	r := call(t, srv, http.MethodPost, "/api/v1/products", token, map[string]any{
		"name": "Tea", "description": "Hot", "category": "Drinks", "price": "10", "quantity": 5,
	})
	require.Equal(t, http.StatusCreated, r.status, r.raw)
	id := r.body["data"].(map[string]any)["id"].(string)

	r = call(t, srv, http.MethodPut, "/api/v1/products/"+id, token, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, r.status, r.raw)

	r = call(t, srv, http.MethodGet, "/api/v1/products/"+id+"/transactions", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	var txs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.raw), &txs))
	require.Len(t, txs, 2)
	types := []any{txs[0]["type"], txs[1]["type"]}
	assert.ElementsMatch(t, []any{"IN", "OUT"}, types)

	r = call(t, srv, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Len(t, r.body["movement"], 1)
}

func TestEditProductThroughForm(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "owner@wings.cafe")

	r := call(t, srv, http.MethodPost, "/api/v1/products", token, map[string]any{
		"name": "Tea", "description": "Hot", "category": "Drinks", "price": "10", "quantity": 5,
	})
	require.Equal(t, http.StatusCreated, r.status, r.raw)
	id := r.body["data"].(map[string]any)["id"].(string)

	r = call(t, srv, http.MethodPost, "/api/v1/screens/product-form/form/edit/"+id, token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, id, r.body["editing_id"])

	// unrelated requests in between must not disturb the remembered id
	call(t, srv, http.MethodGet, "/api/v1/screens/product-form/form", token, nil)
	r = call(t, srv, http.MethodPut, "/api/v1/screens/product-form/form/fields", token, map[string]any{"quantity": 9})
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, id, r.body["editing_id"])

	r = call(t, srv, http.MethodPost, "/api/v1/screens/product-form/form/submit", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, "update", r.body["mode"])

	r = call(t, srv, http.MethodGet, "/api/v1/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.EqualValues(t, 9, r.body["quantity"])
	assert.Equal(t, "Tea", r.body["name"])
}

func TestLastMasterCannotBeRemoved(t *testing.T) {
	srv := newTestServer(t)
	owner := signUp(t, srv, "owner@wings.cafe")
	signUp(t, srv, "clerk@wings.cafe")

	r := call(t, srv, http.MethodGet, "/api/v1/users", owner, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	var members []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.raw), &members))
	require.Len(t, members, 1)
	masterID := members[0]["id"].(string)

	r = call(t, srv, http.MethodDelete, "/api/v1/users/"+masterID, owner, nil)
	assert.Equal(t, http.StatusConflict, r.status, r.raw)
	r = call(t, srv, http.MethodPut, "/api/v1/users/"+masterID, owner, map[string]string{"role": "ADMIN"})
	assert.Equal(t, http.StatusConflict, r.status, r.raw)

	stranger := signUp(t, srv, "stranger@example.com")
	r = call(t, srv, http.MethodGet, "/api/v1/auth/session", stranger, nil)
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, "ADMIN", r.body["session"].(map[string]any)["role"])
}
