package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cartflow/internal/activity"
	"github.com/roach88/cartflow/internal/catalog"
	"github.com/roach88/cartflow/internal/engine"
	"github.com/roach88/cartflow/internal/order"
	"github.com/roach88/cartflow/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()

	e := engine.New(engine.Config{
		Checkout: testutil.Succeed().Resolve,
		Retry: activity.RetryPolicy{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			AttemptTimeout:  time.Second,
		},
		Timeouts: engine.Timeouts{
			Reminder:      5 * time.Second,
			Cancel:        10 * time.Second,
			MaxProcessing: 5 * time.Second,
		},
	})
	t.Cleanup(e.Close)

	srv := httptest.NewServer(New(e, catalog.Default()).Router())
	t.Cleanup(srv.Close)
	return srv, e
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProducts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/products", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	products := decode[[]catalog.Product](t, resp)
	require.Len(t, products, 3)
	assert.Equal(t, catalog.Cappuccino, products[0].ID)
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/carts", `{"userId":"alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createCartResponse](t, resp)
	assert.Equal(t, "cart-alice", created.CartID)
	base := srv.URL + "/carts/" + created.CartID

	// Duplicate initialization conflicts while the first run is live.
	resp = do(t, http.MethodPost, srv.URL+"/carts", `{"userId":"alice"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/items", `{"productId":"Cappuccino"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPut, base+"/items/Cappuccino", `{"quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/items", `{"productId":"Ristretto"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodDelete, base+"/items/Ristretto", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[struct {
		Items []order.ProductItem `json:"items"`
	}](t, resp)
	require.Len(t, items.Items, 1)
	assert.Equal(t, 2, items.Items[0].Quantity)

	resp = do(t, http.MethodPost, base+"/checkout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	checkout := decode[checkoutResponse](t, resp)
	assert.Equal(t, 4.0, checkout.Total)

	resp = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	o := decode[order.Order](t, resp)
	assert.Equal(t, order.StatusSuccess, o.CheckoutStatus)
}

func TestUnknownCartIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/carts/cart-ghost", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Equal(t, "no such cart", body.Error)

	resp = do(t, http.MethodPost, srv.URL+"/carts/cart-ghost/checkout", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/carts", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/carts", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	do(t, http.MethodPost, srv.URL+"/carts", `{"userId":"bob"}`)
	resp = do(t, http.MethodPost, srv.URL+"/carts/cart-bob/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
