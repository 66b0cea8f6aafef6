package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Testicode234/developer-2/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := Init(config.GatewayConfig{BaseURL: server.URL, APIKey: "sk_test"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return client
}

func TestClientTransfer(t *testing.T) {
	t.Run("success returns reference and sends idempotency key", func(t *testing.T) {
		var gotKey string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("Idempotency-Key")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"id":"tx_1"}`))
		})

		ref, err := client.Transfer(context.Background(), "acct_dev_1", 500, "key-1")
		if err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}
		if ref != "tx_1" {
			t.Errorf("expected reference tx_1, got %s", ref)
		}
		if gotKey != "key-1" {
			t.Errorf("expected idempotency key header, got %q", gotKey)
		}
	})

	t.Run("4xx maps to ErrRejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":"account not payable"}`))
		})

		_, err := client.Transfer(context.Background(), "acct_bad", 500, "key-2")
		if !errors.Is(err, ErrRejected) {
			t.Errorf("expected ErrRejected, got %v", err)
		}
	})

	t.Run("5xx maps to ErrTimeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{}`))
		})

		_, err := client.Transfer(context.Background(), "acct_dev_1", 500, "key-3")
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("context deadline maps to ErrTimeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"id":"tx_late"}`))
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Transfer(ctx, "acct_dev_1", 500, "key-4")
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestClientRefund(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/refunds" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"rf_9"}`))
	})

	ref, err := client.Refund(context.Background(), "tx_1", 50)
	if err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if ref != "rf_9" {
		t.Errorf("expected reference rf_9, got %s", ref)
	}
}
