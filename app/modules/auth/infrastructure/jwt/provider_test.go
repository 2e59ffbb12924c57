package authjwt

import (
	"errors"
	"os"
	"testing"
	"time"

	authdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestProvider_GenerateAndValidateToken(t *testing.T) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "test-secret-at-least-32-chars-long!!"
	}
	p := NewProvider(secret, "united-padel")

	claims := &authdomain.Claims{
		PlayerID: uuid.New(),
		Role:     authdomain.RoleOrganizer,
	}

	tests := []struct {
		name        string
		token       func(t *testing.T) string
		provider    Provider
		expectedErr error
		verify      func(t *testing.T, validated *authdomain.Claims)
	}{
		{
			name: "success",
			token: func(t *testing.T) string {
				return mustToken(t, p, claims, time.Hour)
			},
			verify: func(t *testing.T, validated *authdomain.Claims) {
				if validated.PlayerID != claims.PlayerID {
					t.Errorf("expected player %v, got %v", claims.PlayerID, validated.PlayerID)
				}
				if validated.Role != authdomain.RoleOrganizer {
					t.Errorf("expected role organizer, got %s", validated.Role)
				}
			},
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				return mustToken(t, p, claims, -time.Hour)
			},
			expectedErr: ErrExpiredToken,
		},
		{
			name: "invalid signature",
			token: func(t *testing.T) string {
				return mustToken(t, p, claims, time.Hour)
			},
			provider:    NewProvider("wrong-secret", "united-padel"),
			expectedErr: ErrInvalidSignature,
		},
		{
			name: "other issuer",
			token: func(t *testing.T) string {
				return mustToken(t, NewProvider(secret, "someone-else"), claims, time.Hour)
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "subject is not a player id",
			token: func(t *testing.T) string {
				tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
					Subject:   "not-a-uuid",
					Issuer:    "united-padel",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				})
				s, err := tok.SignedString([]byte(secret))
				if err != nil {
					t.Fatalf("failed to sign: %v", err)
				}
				return s
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "malformed token",
			token:       func(t *testing.T) string { return "not.a.jwt" },
			expectedErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validateTarget := p
			if tt.provider != nil {
				validateTarget = tt.provider
			}

			validatedClaims, err := validateTarget.ValidateToken(tt.token(t))

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.verify != nil {
				tt.verify(t, validatedClaims)
			}
		})
	}
}

func mustToken(t *testing.T, p Provider, c *authdomain.Claims, ttl time.Duration) string {
	t.Helper()
	token, err := p.GenerateToken(c, ttl)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}
