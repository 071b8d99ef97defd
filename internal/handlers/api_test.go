package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vendora-labs/partner-backend/internal/models"
	"github.com/vendora-labs/partner-backend/internal/routes"
	"github.com/vendora-labs/partner-backend/internal/services"
	"github.com/vendora-labs/partner-backend/internal/storage"
)

const (
	testSecret   = "handler-test-secret"
	testPassword = "secret123"
)

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
}

func newTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	tokens := services.NewTokenServiceWithSecret(testSecret, time.Hour)

	app := fiber.New()
	routes.SetupRoutes(app, routes.Deps{
		Store:  store,
		Tokens: tokens,
	})
	return app, store
}

func seedPartner(t *testing.T, store *storage.MemoryStore) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		Name:   "Acme Logistics",
		Email:  "ops@acme.com",
		Status: models.StatusActive,
	}
	if err := partner.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := store.CreatePartner(partner); err != nil {
		t.Fatalf("CreatePartner failed: %v", err)
	}
	return partner
}

// adminToken signs a token the way the shared admin service does
func adminToken(t *testing.T) string {
	t.Helper()
	claims := services.SessionClaims{
		Role: services.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign admin token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: invalid envelope %q: %v", method, path, raw, err)
	}
	return resp, &env
}

func TestLoginEndpoint_Success(t *testing.T) {
	app, store := newTestApp(t)
	partner := seedPartner(t, store)

	resp, env := doJSON(t, app, http.MethodPost, "/api/partners/login", "", models.LoginRequest{
		PartnerIdentifier: partner.PartnerID,
		Password:          testPassword,
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, env.Message)
	}
	if !env.Success || env.StatusCode != 200 {
		t.Fatalf("bad envelope: %+v", env)
	}

	var result struct {
		Partner      map[string]interface{} `json:"partner"`
		SessionToken string                 `json:"session_token"`
		ExpiresIn    int64                  `json:"expires_in"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("bad login payload: %v", err)
	}
	if result.SessionToken == "" || result.ExpiresIn != 3600 {
		t.Fatalf("unexpected token payload: %+v", result)
	}
	// Password material never crosses the boundary
	for _, key := range []string{"password", "password_hash", "PasswordHash"} {
		if _, present := result.Partner[key]; present {
			t.Fatalf("response leaks %q", key)
		}
	}
}

func TestLoginEndpoint_ErrorStatuses(t *testing.T) {
	app, store := newTestApp(t)
	partner := seedPartner(t, store)

	blocked := seedBlocked(t, store)
	locked := seedLocked(t, store)

	cases := []struct {
		name       string
		body       models.LoginRequest
		wantStatus int
	}{
		{"wrong password", models.LoginRequest{PartnerIdentifier: partner.PartnerID, Password: "nope-nope"}, 401},
		{"unknown partner", models.LoginRequest{PartnerIdentifier: "ghost", Password: "whatever1"}, 401},
		{"blocked account", models.LoginRequest{PartnerIdentifier: blocked.PartnerID, Password: testPassword}, 403},
		{"locked account", models.LoginRequest{PartnerIdentifier: locked.PartnerID, Password: testPassword}, 423},
		{"missing fields", models.LoginRequest{}, 400},
	}

	for _, tc := range cases {
		resp, env := doJSON(t, app, http.MethodPost, "/api/partners/login", "", tc.body)
		if resp.StatusCode != tc.wantStatus {
			t.Errorf("%s: expected %d, got %d (%s)", tc.name, tc.wantStatus, resp.StatusCode, env.Message)
		}
		if env.Success {
			t.Errorf("%s: envelope reports success on failure", tc.name)
		}
		if env.StatusCode != tc.wantStatus {
			t.Errorf("%s: envelope statusCode %d != %d", tc.name, env.StatusCode, tc.wantStatus)
		}
	}
}

func seedBlocked(t *testing.T, store *storage.MemoryStore) *models.Partner {
	t.Helper()
	p := &models.Partner{Name: "Blocked Partner", Status: models.StatusBlocked}
	if err := p.SetPassword(testPassword); err != nil {
		t.Fatal(err)
	}
	if err := store.CreatePartner(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func seedLocked(t *testing.T, store *storage.MemoryStore) *models.Partner {
	t.Helper()
	until := time.Now().Add(time.Hour)
	p := &models.Partner{Name: "Locked Partner", Status: models.StatusActive, LockedUntil: &until, LoginAttempts: 5}
	if err := p.SetPassword(testPassword); err != nil {
		t.Fatal(err)
	}
	if err := store.CreatePartner(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateEndpoint_RequiresAdmin(t *testing.T) {
	app, _ := newTestApp(t)

	body := models.PartnerRegistration{
		Name:            "Acme Logistics",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/partners/", "", body)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp, env := doJSON(t, app, http.MethodPost, "/api/partners/", adminToken(t), body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 with admin token, got %d (%s)", resp.StatusCode, env.Message)
	}

	var created models.Partner
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("bad create payload: %v", err)
	}
	if created.PartnerID == "" {
		t.Fatal("created partner has no code")
	}
	if created.CreatedBy != "admin-1" {
		t.Fatalf("createdBy not taken from token subject: %q", created.CreatedBy)
	}
}

func TestCreateEndpoint_PartnerTokenForbidden(t *testing.T) {
	app, store := newTestApp(t)
	partner := seedPartner(t, store)

	// A partner's own session token must not open admin routes
	_, loginEnv := doJSON(t, app, http.MethodPost, "/api/partners/login", "", models.LoginRequest{
		PartnerIdentifier: partner.PartnerID,
		Password:          testPassword,
	})
	var result models.LoginResult
	if err := json.Unmarshal(loginEnv.Data, &result); err != nil {
		t.Fatalf("bad login payload: %v", err)
	}

	resp, _ := doJSON(t, app, http.MethodGet, "/api/partners/", result.SessionToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for partner token on admin route, got %d", resp.StatusCode)
	}
}

func TestStatusEndpoint_BlockThenLoginRejected(t *testing.T) {
	app, store := newTestApp(t)
	partner := seedPartner(t, store)
	token := adminToken(t)

	resp, env := doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/api/partners/%s/status", partner.PartnerID), token,
		models.StatusChangeRequest{Action: "block", Reason: "fraud review"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("block failed: %d (%s)", resp.StatusCode, env.Message)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/partners/login", "", models.LoginRequest{
		PartnerIdentifier: partner.PartnerID,
		Password:          testPassword,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 after block, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/api/partners/%s/status", partner.PartnerID), token,
		models.StatusChangeRequest{Action: "unblock"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unblock failed: %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/partners/login", "", models.LoginRequest{
		PartnerIdentifier: partner.PartnerID,
		Password:          testPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login after unblock failed: %d", resp.StatusCode)
	}
}

func TestDeleteEndpoint_RemovesFromListing(t *testing.T) {
	app, store := newTestApp(t)
	partner := seedPartner(t, store)
	token := adminToken(t)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/partners/"+partner.PartnerID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete failed: %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/partners/"+partner.PartnerID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}

	_, env := doJSON(t, app, http.MethodGet, "/api/partners/", token, nil)
	var listing struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &listing); err != nil {
		t.Fatalf("bad list payload: %v", err)
	}
	if listing.Count != 0 {
		t.Fatalf("deleted partner still listed: count=%d", listing.Count)
	}
}

func TestOrderEventEndpoint(t *testing.T) {
	app, store := newTestApp(t)
	partner := seedPartner(t, store)
	token := adminToken(t)

	for _, event := range []string{"assigned", "accepted", "completed"} {
		resp, env := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/partners/%s/orders/%s", partner.PartnerID, event), token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("event %s failed: %d (%s)", event, resp.StatusCode, env.Message)
		}
	}

	_, env := doJSON(t, app, http.MethodGet, "/api/partners/"+partner.PartnerID, token, nil)
	var got models.Partner
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("bad get payload: %v", err)
	}
	if got.AcceptanceRate != 100 || got.CompletionRate != 100 {
		t.Fatalf("rates not recomputed: %+v", got)
	}

	resp, _ := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/partners/%s/orders/%s", partner.PartnerID, "bogus"), token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown event, got %d", resp.StatusCode)
	}
}

func TestChangeOwnPassword(t *testing.T) {
	app, store := newTestApp(t)
	partner := seedPartner(t, store)

	_, loginEnv := doJSON(t, app, http.MethodPost, "/api/partners/login", "", models.LoginRequest{
		PartnerIdentifier: partner.PartnerID,
		Password:          testPassword,
	})
	var result models.LoginResult
	if err := json.Unmarshal(loginEnv.Data, &result); err != nil {
		t.Fatalf("bad login payload: %v", err)
	}

	resp, env := doJSON(t, app, http.MethodPut, "/api/partners/me/password", result.SessionToken,
		models.PasswordChangeRequest{
			CurrentPassword: testPassword,
			NewPassword:     "brand-new-pass",
			ConfirmPassword: "brand-new-pass",
		})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("password change failed: %d (%s)", resp.StatusCode, env.Message)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/partners/login", "", models.LoginRequest{
		PartnerIdentifier: partner.PartnerID,
		Password:          "brand-new-pass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login with new password failed: %d", resp.StatusCode)
	}
}
