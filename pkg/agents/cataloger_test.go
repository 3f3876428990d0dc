package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chasm-hq/chasm/pkg/ai"
	"github.com/chasm-hq/chasm/pkg/harvest"
)

func TestCatalogerDiscover(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<p>We build drones.</p>
			<a href="/products/aero-x1">Aero X1</a>
		</body></html>`))
	})
	mux.HandleFunc("/products/aero-x1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Aero X1: a compact folding drone with a 3-axis gimbal."))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	stub := &stubAI{
		withFormat: func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
			if !contains(prompt, "3-axis gimbal") {
				t.Errorf("prompt should include sub-page text:\n%s", prompt)
			}
			return json.Unmarshal([]byte(`{"products":[
				{"name":"Aero X1","description":"A compact folding drone."},
				{"name":"  ","description":"ignored"}
			]}`), out)
		},
	}

	c := NewProductCataloger(stub, harvest.NewHarvester())
	products, err := c.Discover(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected one product, got %+v", products)
	}
	p := products[0]
	if p.Name != "Aero X1" || p.URL != srv.URL || p.ID == "" {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestCatalogerNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewProductCataloger(&stubAI{}, harvest.NewHarvester())
	if _, err := c.Discover(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error when the site cannot be fetched")
	}
}
