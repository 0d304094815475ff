// Package editlink issues and verifies the signed, short-lived tokens that
// let a reporter adjust a pending report's location.
package editlink

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tulumreporta/backend/internal/models"
	"tulumreporta/backend/internal/storage"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("edit link not found")
	ErrExpired      = errors.New("edit link expired")
	ErrInvalidToken = errors.New("invalid edit token")
)

// Resolver issues signed edit tokens and resolves their public short ids.
// Tokens are bearer credentials; there is no revocation short of expiry, and
// a short id may be resolved any number of times before it expires.
type Resolver struct {
	Storage storage.Storage
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewResolver creates a Resolver signing with secret and issuing tokens with
// the given TTL.
func NewResolver(s storage.Storage, secret string, ttl time.Duration) *Resolver {
	return &Resolver{
		Storage: s,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issued is the result of Issue: the short id that goes into the chat
// message, the signed token embedded in the long edit URL, and the expiry.
type Issued struct {
	ShortID   string
	Token     string
	ExpiresAt time.Time
}

// Issue signs a token bound to the report and reporter and stores it under a
// fresh short id. Called once per successful submission.
func (r *Resolver) Issue(reportID, reporterID string) (*Issued, error) {
	expiresAt := r.now().Add(r.ttl)
	claims := jwt.MapClaims{
		"report_id": reportID,
		"phone":     reporterID,
		"exp":       expiresAt.Unix(),
		"iss":       "tulumreporta",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return nil, fmt.Errorf("sign edit token: %w", err)
	}

	shortID := newShortID()
	record := &models.EditToken{
		ShortID:    shortID,
		ReportID:   reportID,
		ReporterID: reporterID,
		Token:      token,
		ExpiresAt:  expiresAt,
	}
	if err := r.Storage.SaveEditToken(record); err != nil {
		return nil, err
	}
	return &Issued{ShortID: shortID, Token: token, ExpiresAt: expiresAt}, nil
}

// Resolve exchanges a short id for the report id and signed token behind it.
// The stored expiry is checked here independently of the token's exp claim.
func (r *Resolver) Resolve(shortID string) (*models.EditToken, error) {
	record, err := r.Storage.GetEditTokenByShortID(shortID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if record.ExpiresAt.Before(r.now()) {
		return nil, ErrExpired
	}
	return record, nil
}

// Authorize verifies the token's signature, its binding to reportID and its
// exp claim. Any failure yields ErrInvalidToken.
func (r *Resolver) Authorize(tokenString, reportID string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return r.secret, nil
	}, jwt.WithTimeFunc(r.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	if claimed, _ := claims["report_id"].(string); claimed != reportID {
		return ErrInvalidToken
	}
	return nil
}

// newShortID returns the 8-character identifier used in /e/ URLs.
func newShortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
