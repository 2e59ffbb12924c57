package authjwt

import "errors"

// Validation failures. The middleware answers 401 for all three but logs
// expiry separately.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
)
