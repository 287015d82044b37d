package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&Config{BaseURL: srv.URL})
}

func TestClient_CartItems_ArrayEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart/u1", r.URL.Path)
		w.Write([]byte(`{"message":"ok","data":[
			{"cart_item_id":"c1","ticket_type_id":"tt1","user_id":"u1","quantity":2,"added_at":"2026-08-01T10:00:00Z"},
			{"id":"c2","ticket_type_id":"tt2","user_id":"u1","quantity":1}
		]}`))
	})

	items, err := client.CartItems(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c1", items[0].CartItemID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.False(t, items[0].AddedAt.IsZero())
	// "id" alias is accepted when "cart_item_id" is absent.
	assert.Equal(t, "c2", items[1].CartItemID)
}

func TestClient_CartItems_SingleObjectEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","data":{"cart_item_id":"c1","ticket_type_id":"tt1","user_id":"u1","quantity":1}}`))
	})

	items, err := client.CartItems(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c1", items[0].CartItemID)
}

func TestClient_CartItems_NullData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","data":null}`))
	})

	items, err := client.CartItems(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, status.ErrAuthRequired},
		{"not found", http.StatusNotFound, `{}`, status.ErrNotFound},
		{"conflict", http.StatusConflict, `{}`, status.ErrDuplicate},
		{"server error", http.StatusInternalServerError, `{}`, status.ErrUnavailable},
		{"duplicate in text", http.StatusBadRequest, `{"error":"cart item already exists"}`, status.ErrDuplicate},
		{"error envelope", http.StatusOK, `{"message":"error","error":"something broke"}`, status.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			})

			_, err := client.CartItems(context.Background(), "u1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_NetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	client := New(&Config{BaseURL: srv.URL})
	_, err := client.CartItems(context.Background(), "u1")
	assert.ErrorIs(t, err, status.ErrUnavailable)
}

func TestClient_SignIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		w.Write([]byte(`{"message":"ok","data":{"user_id":"u1","email":"a@b.c","name":"Ann","role":"customer","token":"tok-1"}}`))
	})

	result, err := client.SignIn(context.Background(), models.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", result.Session.UserID)
	assert.Equal(t, "tok-1", result.Token)
}

func TestClient_SignIn_SingleElementArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","data":[{"id":"u2","email":"a@b.c","token":"tok-2"}]}`))
	})

	result, err := client.SignIn(context.Background(), models.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u2", result.Session.UserID)
	// Missing role defaults to customer.
	assert.Equal(t, models.RoleCustomer, result.Session.Role)
}

func TestClient_TicketTypesByIDs_BatchQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt1,tt2", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"message":"ok","data":[
			{"ticket_type_id":"tt1","event_id":"e1","name":"VIP","price":"120.50","available_quantity":4},
			{"ticket_type_id":"tt2","event_id":"e1","name":"Standard","price":"40","available_quantity":100}
		]}`))
	})

	byID, err := client.TicketTypesByIDs(context.Background(), []string{"tt1", "tt2"})
	require.NoError(t, err)
	require.Len(t, byID, 2)
	assert.Equal(t, "120.5", byID["tt1"].Price.String())
	assert.Equal(t, "e1", byID["tt2"].EventID)
}

func TestClient_TicketTypesByIDs_EmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty id set")
	})

	byID, err := client.TicketTypesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, byID)
}

func TestClient_EventByID_NormalizesLegacyStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "e1", r.URL.Query().Get("event_id"))
		w.Write([]byte(`{"message":"ok","data":{"event_id":"e1","title":"Concert","status":"ACTIVE","venue":"Hall A"}}`))
	})

	ev, err := client.EventByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EventPublished, ev.Status)
}

func TestClient_AuthorizationHeaderFromContext(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"message":"ok","data":[]}`))
	})

	ctx := backend.WithToken(context.Background(), "tok-9")
	_, err := client.CartItems(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", gotAuth)

	// Without a token in the context the header is omitted.
	_, err = client.CartItems(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}
