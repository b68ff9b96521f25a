// Package apikey issues API keys. Only the bcrypt hash of a key is stored; the raw
// key is returned once to the caller.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	// PrefixLen is the number of leading characters stored in clear for lookup.
	PrefixLen = 8

	rawPrefix   = "ms_"
	randomBytes = 24
)

var ErrInvalidScope = errors.New("invalid scope")

var knownScopes = map[string]bool{
	models.ScopeContributor: true,
	models.ScopeModerator:   true,
	models.ScopeAdmin:       true,
}

// Generate creates a key for userID. cost is the bcrypt cost; zero means
// bcrypt.DefaultCost.
func Generate(name string, userID uuid.UUID, scopes []string, cost int) (string, *models.APIKey, error) {
	if len(scopes) == 0 {
		return "", nil, fmt.Errorf("%w: at least one scope is required", ErrInvalidScope)
	}
	for _, s := range scopes {
		if !knownScopes[s] {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidScope, s)
		}
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generating key: %w", err)
	}
	raw := rawPrefix + hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", nil, fmt.Errorf("hashing key: %w", err)
	}

	now := time.Now().UTC()
	return raw, &models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		KeyHash:   string(hash),
		KeyPrefix: raw[:PrefixLen],
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
