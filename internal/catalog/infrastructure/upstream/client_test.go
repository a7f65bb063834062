package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newUpstream(t *testing.T, status int) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`[{"id":1,"name":"trees","parentId":null},{"id":2,"name":"spruce","parentId":1}]`))
	})
	mux.HandleFunc("/offers", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`[{"id":10,"categoryId":2,"name":"Nordic spruce","available":true,"newPrice":1299.5,"pictures":["a.jpg"]},{"id":11,"categoryId":1,"name":"Pine","available":false,"newPrice":"99"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestClient_Load(t *testing.T) {
	t.Parallel()

	srv, _ := newUpstream(t, http.StatusOK)
	snap, err := NewClient(srv.URL, 2*time.Second).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(snap.Categories) != 2 {
		t.Fatalf("categories = %+v", snap.Categories)
	}
	if !snap.Categories[0].IsRoot() || snap.Categories[1].ParentID == nil || *snap.Categories[1].ParentID != 1 {
		t.Errorf("parent ids not decoded: %+v", snap.Categories)
	}

	if len(snap.Offers) != 2 {
		t.Fatalf("offers = %+v", snap.Offers)
	}
	if !snap.Offers[0].NewPrice.Equal(decimal.RequireFromString("1299.5")) {
		t.Errorf("price = %s, want 1299.5", snap.Offers[0].NewPrice)
	}
	if !snap.Offers[1].NewPrice.Equal(decimal.NewFromInt(99)) {
		t.Errorf("quoted price = %s, want 99", snap.Offers[1].NewPrice)
	}
	if snap.Offers[1].Pictures == nil {
		t.Error("missing pictures should decode as empty slice")
	}
}

func TestClient_OffersAvailableParam(t *testing.T) {
	t.Parallel()

	srv, queries := newUpstream(t, http.StatusOK)
	available := true
	if _, err := NewClient(srv.URL, 2*time.Second).Offers(context.Background(), &available); err != nil {
		t.Fatalf("Offers: %v", err)
	}
	if len(*queries) != 1 || (*queries)[0] != "available=true" {
		t.Errorf("queries = %v, want [available=true]", *queries)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv, _ := newUpstream(t, http.StatusBadGateway)
	c := NewClient(srv.URL, 2*time.Second)
	c.http.SetRetryCount(0)
	if _, err := c.Load(context.Background()); err == nil {
		t.Error("expected error for 502 upstream")
	}
}
