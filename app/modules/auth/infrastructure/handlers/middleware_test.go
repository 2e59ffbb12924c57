package authhandlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth/domain"
	authjwt "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth/infrastructure/jwt"
	"github.com/google/uuid"
)

const testSecret = "test-secret-at-least-32-chars-long!!"

func TestAuthMiddleware(t *testing.T) {
	provider := authjwt.NewProvider(testSecret, "")
	playerID := uuid.New()

	valid, err := provider.GenerateToken(&authdomain.Claims{PlayerID: playerID, Role: authdomain.RolePlayer}, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	expired, err := provider.GenerateToken(&authdomain.Claims{PlayerID: playerID, Role: authdomain.RolePlayer}, -time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "missing header",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid bearer",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "lowercase scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "bearer "+valid) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "expired token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "query token on a plain request is ignored",
			setup: func(r *http.Request) {
				r.URL.RawQuery = "access_token=" + valid
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "query token on a websocket upgrade",
			setup: func(r *http.Request) {
				r.URL.RawQuery = "access_token=" + valid
				r.Header.Set("Upgrade", "websocket")
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *authdomain.Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			AuthMiddleware(provider)(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus == http.StatusOK && (seen == nil || seen.PlayerID != playerID) {
				t.Errorf("expected claims for %v in context, got %+v", playerID, seen)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name       string
		claims     *authdomain.Claims
		wantStatus int
	}{
		{name: "no claims", wantStatus: http.StatusForbidden},
		{name: "player cannot import", claims: &authdomain.Claims{Role: authdomain.RolePlayer}, wantStatus: http.StatusForbidden},
		{name: "organizer can import", claims: &authdomain.Claims{Role: authdomain.RoleOrganizer}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/import", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rr := httptest.NewRecorder()

			RequireRole(authdomain.Role.CanImport)(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/k-factors", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected the burst to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the burst, got %d", codes[2])
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/k-factors", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected other client to pass, got %d", rr.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"https://app.unitedpadel.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/k-factors", nil)
	req.Header.Set("Origin", "https://app.unitedpadel.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.unitedpadel.example" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/k-factors", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}
}
