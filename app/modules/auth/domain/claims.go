package authdomain

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the verified identity attached to a request.
type Claims struct {
	PlayerID  uuid.UUID
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

func (c *Claims) IsExpired() bool {
	return !time.Now().Before(c.ExpiresAt)
}
