package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/offer-desk/internal/application"
	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/config"
	"github.com/eugenenazirov/offer-desk/internal/offer"
)

// offersBackend is an in-memory stand-in for the REST collaborator.
type offersBackend struct {
	mu       sync.Mutex
	accounts map[string]string
	offers   []map[string]any
}

func newOffersBackend(t *testing.T) *httptest.Server {
	t.Helper()

	b := &offersBackend{accounts: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dimensions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []calculator.PackageDimension{
			{Type: "Carton", Width: 10, Length: 12, Height: 15},
			{Type: "Box", Width: 20, Length: 24, Height: 30},
			{Type: "Pallet", Width: 40, Length: 48, Height: 60},
		})
	})
	mux.HandleFunc("GET /offerItems", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, offer.Vocabulary{
			Modes:           []string{"LCL", "FCL"},
			MovementTypes:   []string{"Door to Door", "Port to Port"},
			Incoterms:       []string{"EXW", "FOB", "CIF"},
			CountriesCities: map[string][]string{"Germany": {"Berlin", "Hamburg"}},
			PackageTypes:    []string{"Carton", "Box", "Pallet"},
			Unit1:           []string{"CM", "IN"},
			Unit2:           []string{"KG", "LB"},
			Currencies:      []string{"USD", "EUR"},
		})
	})
	mux.HandleFunc("GET /offers", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.offers)
	})
	mux.HandleFunc("POST /offers", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		payload["id"] = len(b.offers) + 1
		b.offers = append(b.offers, payload)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, payload)
	})
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		b.mu.Lock()
		b.accounts[payload.Email] = payload.Password
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		b.mu.Lock()
		password, ok := b.accounts[payload.Username]
		b.mu.Unlock()
		if !ok || password != payload.Password {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"accessToken": "token-" + payload.Username})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func newApp(t *testing.T, backendURL string) http.Handler {
	t.Helper()

	cfg := config.Config{
		Port:               "0",
		BackendURL:         backendURL,
		BackendTimeout:     2 * time.Second,
		InitialDimensions:  []calculator.PackageDimension{{Type: "Pallet", Width: 40, Length: 48, Height: 60}},
		Locale:             "en",
		RequireAuth:        true,
		SessionTTL:         time.Hour,
		RememberSessionTTL: 24 * time.Hour,
	}
	app, err := application.New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("application.New returned error: %v", err)
	}
	return app.Handler()
}

func performRequest(t *testing.T, handler http.Handler, method, target string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	backend := newOffersBackend(t)
	handler := newApp(t, backend.URL)

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/offers", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", rec.Code)
	}

	register := map[string]string{"email": "ops@example.com", "password": "secret", "checkPassword": "secret"}
	rec = performRequest(t, handler, http.MethodPost, "/api/auth/register", register, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/auth/login", map[string]string{"username": "ops@example.com", "password": "secret"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	authHeader := map[string]string{"Authorization": "Bearer " + session.Token}

	rec = performRequest(t, handler, http.MethodPost, "/api/dimensions/refresh", nil, authHeader)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from dimensions refresh, got %d", rec.Code)
	}

	drafts := []offer.Draft{
		{Mode: "FCL", MovementType: "Port to Port", Incoterms: "FOB", CountriesCities: "Germany-Hamburg", PackageType: "Box", Unit1: "CM", Unit1Value: "10", Unit2: "KG", Unit2Value: "5", Currency: "EUR"},
		{Mode: "LCL", MovementType: "Door to Door", Incoterms: "EXW", CountriesCities: "Germany-Berlin", PackageType: "Pallet", Unit1: "CM", Unit1Value: "1", Unit2: "KG", Unit2Value: "1", Currency: "USD"},
	}
	for _, draft := range drafts {
		rec = performRequest(t, handler, http.MethodPost, "/api/offers/calculate", draft, authHeader)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from calculate, got %d", rec.Code)
		}

		rec = performRequest(t, handler, http.MethodPost, "/api/offers", draft, authHeader)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 from submit, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	infeasible := drafts[1]
	infeasible.PackageType = "Carton"
	infeasible.Unit1Value = "12"
	infeasible.Unit2Value = "8"
	rec = performRequest(t, handler, http.MethodPost, "/api/offers", infeasible, authHeader)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for infeasible LCL offer, got %d", rec.Code)
	}

	query := url.Values{"sort": {"Incoterms:ascend"}, "filter": {"Mode:LCL,FCL"}}
	rec = performRequest(t, handler, http.MethodGet, "/api/offers?"+query.Encode(), nil, authHeader)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from listing, got %d: %s", rec.Code, rec.Body.String())
	}

	var listing struct {
		Offers []offer.Record `json:"offers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(listing.Offers))
	}
	got := fmt.Sprintf("%s:%d %s:%d", listing.Offers[0].Incoterms, listing.Offers[0].PalletCount, listing.Offers[1].Incoterms, listing.Offers[1].PalletCount)
	if want := "EXW:1 FOB:8"; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if listing.Offers[0].ID != "2" {
		t.Fatalf("expected numeric backend id to decode, got %q", listing.Offers[0].ID)
	}
}
