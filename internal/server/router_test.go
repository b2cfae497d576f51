package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	accountdomain "smartbox-platform/backend/internal/account/domain"
	accounthandler "smartbox-platform/backend/internal/account/handler"
	accountservice "smartbox-platform/backend/internal/account/service"
	adminhandler "smartbox-platform/backend/internal/admin/handler"
	"smartbox-platform/backend/internal/authz"
	healthhandler "smartbox-platform/backend/internal/health/handler"
	ownershipdomain "smartbox-platform/backend/internal/ownership/domain"
	ownershiphandler "smartbox-platform/backend/internal/ownership/handler"
	ownershipservice "smartbox-platform/backend/internal/ownership/service"
	readingdomain "smartbox-platform/backend/internal/reading/domain"
	readinghandler "smartbox-platform/backend/internal/reading/handler"
	"smartbox-platform/backend/internal/security"
)

// In-memory fixture backing every repository the router needs.

type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*accountdomain.Account
}

func (r *memAccounts) GetByID(ctx context.Context, id string) (*accountdomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memAccounts) GetByUsername(ctx context.Context, username string) (*accountdomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAccounts) CreateWithProfile(ctx context.Context, a *accountdomain.Account, profile *accountdomain.BusinessProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == a.Username {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	a2 := *a
	r.byID[a.ID] = &a2
	return nil
}

func (r *memAccounts) SetApproved(ctx context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.Approved = approved
	}
	return nil
}

func (r *memAccounts) ListPending(ctx context.Context) ([]*accountdomain.PendingAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*accountdomain.PendingAccount{}
	for _, a := range r.byID {
		if !a.Approved {
			out = append(out, &accountdomain.PendingAccount{Account: *a})
		}
	}
	return out, nil
}

type memOwnerships struct {
	mu    sync.Mutex
	byBox map[string]*ownershipdomain.BoxOwnership
}

func (r *memOwnerships) GetByBoxID(ctx context.Context, boxID string) (*ownershipdomain.BoxOwnership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byBox[boxID], nil
}

func (r *memOwnerships) Create(ctx context.Context, o *ownershipdomain.BoxOwnership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byBox[o.BoxID]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	o2 := *o
	r.byBox[o.BoxID] = &o2
	return nil
}

func (r *memOwnerships) ListByAccount(ctx context.Context, accountID string) ([]*ownershipdomain.BoxOwnership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*ownershipdomain.BoxOwnership{}
	for _, o := range r.byBox {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOwnerships) BoxIDsByAccount(ctx context.Context, accountID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, o := range r.byBox {
		if o.AccountID == accountID {
			out = append(out, o.BoxID)
		}
	}
	return out, nil
}

type memReadings struct {
	mu       sync.Mutex
	readings []*readingdomain.SensorReading
}

func (r *memReadings) Insert(ctx context.Context, reading *readingdomain.SensorReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reading.ID = int64(len(r.readings) + 1)
	reading.RecordedAt = time.Now().UTC()
	r2 := *reading
	r.readings = append(r.readings, &r2)
	return nil
}

func (r *memReadings) ListByBox(ctx context.Context, boxID string, limit int) ([]*readingdomain.SensorReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*readingdomain.SensorReading{}
	for i := len(r.readings) - 1; i >= 0 && len(out) < limit; i-- {
		if r.readings[i].BoxID == boxID {
			out = append(out, r.readings[i])
		}
	}
	return out, nil
}

func (r *memReadings) ListByBoxes(ctx context.Context, boxIDs []string, limit int) ([]*readingdomain.SensorReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member := map[string]bool{}
	for _, id := range boxIDs {
		member[id] = true
	}
	out := []*readingdomain.SensorReading{}
	for i := len(r.readings) - 1; i >= 0 && len(out) < limit; i-- {
		if member[r.readings[i].BoxID] {
			out = append(out, r.readings[i])
		}
	}
	return out, nil
}

func (r *memReadings) DistinctBoxes(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, reading := range r.readings {
		if !seen[reading.BoxID] {
			seen[reading.BoxID] = true
			out = append(out, reading.BoxID)
		}
	}
	return out, nil
}

func (r *memReadings) ForEachByBox(ctx context.Context, boxID string, fn func(*readingdomain.SensorReading) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.readings) - 1; i >= 0; i-- {
		if r.readings[i].BoxID == boxID {
			if err := fn(r.readings[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func newTestServer(t *testing.T) (http.Handler, *security.TokenProvider, *memReadings) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := security.NewTokenProvider([]byte("test-secret"), time.Hour)
	accounts := &memAccounts{byID: map[string]*accountdomain.Account{}}
	ownerships := &memOwnerships{byBox: map[string]*ownershipdomain.BoxOwnership{}}
	readings := &memReadings{}

	auth := accountservice.NewAuthService(accounts, security.NewHasher(4), tokens)
	registry := ownershipservice.NewRegistry(ownerships)
	policy, err := authz.NewOPAEvaluator(context.Background())
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}

	handler := NewRouter(Handlers{
		Auth:      accounthandler.NewAuthHandler(auth),
		Readings:  readinghandler.NewReadingHandler(readings, registry, 1000),
		Ownership: ownershiphandler.NewOwnershipHandler(registry),
		Admin:     adminhandler.NewAdminHandler(auth, readings, policy, nil),
		Health:    healthhandler.NewHealthHandler(nil, policy),
	}, tokens, []string{"http://localhost:3000"})

	return handler, tokens, readings
}

func send(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	h, tokens, readings := newTestServer(t)

	if err := readings.Insert(context.Background(), &readingdomain.SensorReading{BoxID: "SMARTBOX-001"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Public routes answer without a token.
	if w := send(h, http.MethodGet, "/api/data/SMARTBOX-001", "", ""); w.Code != http.StatusOK {
		t.Errorf("public data status = %d, want 200", w.Code)
	}
	if w := send(h, http.MethodGet, "/api/export/SMARTBOX-001", "", ""); w.Code != http.StatusOK {
		t.Errorf("public export status = %d, want 200", w.Code)
	}
	if w := send(h, http.MethodGet, "/api/health", "", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}

	// Protected routes demand a token.
	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/boxes"},
		{http.MethodPost, "/api/boxes/register"},
		{http.MethodGet, "/api/admin/users"},
	}
	for _, route := range protected {
		if w := send(h, route.method, route.path, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want 401", route.method, route.path, w.Code)
		}
	}

	// And a valid partner token cannot reach admin routes.
	partner, _, err := tokens.Issue("acct-partner", "partner", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if w := send(h, http.MethodGet, "/api/admin/users", partner, ""); w.Code != http.StatusForbidden {
		t.Errorf("admin as partner = %d, want 403", w.Code)
	}
}

func TestRouter_EndToEndPartnerFlow(t *testing.T) {
	h, tokens, readings := newTestServer(t)

	// Register, get approved, log in.
	if w := send(h, http.MethodPost, "/api/auth/register", "", `{"username":"alice","password":"secret1","email":"a@b.c"}`); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	super, _, err := tokens.Issue("acct-root", "root", "super_admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	pendingResp := send(h, http.MethodGet, "/api/admin/users", super, "")
	if pendingResp.Code != http.StatusOK {
		t.Fatalf("pending status = %d", pendingResp.Code)
	}
	body := pendingResp.Body.String()
	idStart := strings.Index(body, `"id":"`)
	if idStart < 0 {
		t.Fatalf("no account id in %s", body)
	}
	accountID := body[idStart+6:]
	accountID = accountID[:strings.Index(accountID, `"`)]
	if w := send(h, http.MethodPost, "/api/admin/approve/"+accountID, super, ""); w.Code != http.StatusOK {
		t.Fatalf("approve status = %d", w.Code)
	}

	loginResp := send(h, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"secret1"}`)
	if loginResp.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", loginResp.Code, loginResp.Body.String())
	}
	lb := loginResp.Body.String()
	tokStart := strings.Index(lb, `"token":"`)
	if tokStart < 0 {
		t.Fatalf("no token in %s", lb)
	}
	token := lb[tokStart+9:]
	token = token[:strings.Index(token, `"`)]

	// Claim a box, ingest data for it, see it on the dashboard.
	if w := send(h, http.MethodPost, "/api/boxes/register", token, `{"box_id":"SMARTBOX-001"}`); w.Code != http.StatusCreated {
		t.Fatalf("claim status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := readings.Insert(context.Background(), &readingdomain.SensorReading{BoxID: "SMARTBOX-001"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := readings.Insert(context.Background(), &readingdomain.SensorReading{BoxID: "SMARTBOX-OTHER"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	w := send(h, http.MethodGet, "/api/dashboard", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "SMARTBOX-001") {
		t.Error("dashboard should show the claimed box")
	}
	if strings.Contains(w.Body.String(), "SMARTBOX-OTHER") {
		t.Error("dashboard must not show unclaimed boxes")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
