package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// Rejection causes. They are wrapped together with domain.ErrUnauthorized so
// callers see one generic failure while logs can still tell them apart.
var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")
)

// sessionClaims is the exact JSON payload of a session token. Unknown
// fields, a different version, or a non-numeric subject are rejected.
type sessionClaims struct {
	Version int    `json:"ver"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 session tokens with a server-held secret.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTService refuses an empty secret; there is no fallback key.
func NewJWTService(secret, issuer string) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTService{secret: []byte(secret), issuer: issuer, ttl: domain.SessionTTL}, nil
}

// Issue returns a token valid for [now, now+24h) and its expiry instant.
func (s *JWTService) Issue(userID int64, email string, now time.Time) (string, time.Time, error) {
	now = now.UTC().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	claims := sessionClaims{
		Version: domain.SessionClaimsVersion,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, expiry (now >= exp is expired) and the
// payload schema.
func (s *JWTService) Verify(token string, now time.Time) (*domain.SessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, reject(ErrTokenMissing)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &sessionClaims{}
	tkn, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, reject(classify(err))
	}
	if !tkn.Valid {
		return nil, reject(ErrTokenMalformed)
	}

	// The library decodes leniently; re-decode the payload strictly so extra
	// fields fail closed.
	if err := strictDecode(parser, token); err != nil {
		return nil, reject(err)
	}

	if claims.Version != domain.SessionClaimsVersion || claims.Email == "" {
		return nil, reject(ErrTokenMalformed)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, reject(ErrTokenMalformed)
	}

	return &domain.SessionClaims{
		UserID:    userID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func strictDecode(parser *jwt.Parser, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrTokenMalformed
	}
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return ErrTokenMalformed
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var strict sessionClaims
	if err := dec.Decode(&strict); err != nil {
		return ErrTokenMalformed
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}

func reject(cause error) error {
	return fmt.Errorf("%w: %w", domain.ErrUnauthorized, cause)
}

// Reason maps a Verify error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return "missing"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
