package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Roles a token can carry. Spectator tokens grant read-only access; every
// mutating command requires a moderator token.
const (
	RoleModerator = "moderator"
	RoleSpectator = "spectator"
)

// Claims binds a token to one session and one access role.
type Claims struct {
	SessionCode string `json:"session_code"`
	Role        string `json:"role"`
	Exp         int64  `json:"exp"`
}

// DefaultTokenExpiry is the default lifetime for access tokens.
const DefaultTokenExpiry = 24 * time.Hour

// GenerateToken creates an HMAC-SHA256 signed token for a session and role.
// Format: base64url(payload).base64url(signature).
func GenerateToken(sessionCode, role string, secret []byte, expiry time.Duration) (token string, expiresAt time.Time, err error) {
	if len(secret) == 0 {
		return "", time.Time{}, fmt.Errorf("token secret is required")
	}
	if role != RoleModerator && role != RoleSpectator {
		return "", time.Time{}, fmt.Errorf("unknown token role %q", role)
	}
	expiresAt = time.Now().UTC().Add(expiry)
	claims := Claims{
		SessionCode: sessionCode,
		Role:        role,
		Exp:         expiresAt.Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal claims: %w", err)
	}
	b64Payload := base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(b64Payload))
	sig := mac.Sum(nil)
	b64Sig := base64.RawURLEncoding.EncodeToString(sig)
	return b64Payload + "." + b64Sig, expiresAt, nil
}

// VerifyToken verifies the signature and returns the claims. Returns an
// error if the token is malformed, tampered with, or expired.
func VerifyToken(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}
	b64Payload, b64Sig := parts[0], parts[1]

	// Verify signature
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(b64Payload))
	expectedSig := mac.Sum(nil)
	sig, err := base64.RawURLEncoding.DecodeString(b64Sig)
	if err != nil {
		return nil, fmt.Errorf("invalid token signature encoding: %w", err)
	}
	if !hmac.Equal(sig, expectedSig) {
		return nil, fmt.Errorf("invalid token signature")
	}

	// Decode payload
	payload, err := base64.RawURLEncoding.DecodeString(b64Payload)
	if err != nil {
		return nil, fmt.Errorf("invalid token payload encoding: %w", err)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("invalid token payload: %w", err)
	}

	// Check expiry
	if time.Now().UTC().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}
	if claims.SessionCode == "" || (claims.Role != RoleModerator && claims.Role != RoleSpectator) {
		return nil, fmt.Errorf("invalid token claims")
	}
	return &claims, nil
}
