// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HeaderAdminKey carries the admin key on API requests.
const HeaderAdminKey = "X-Admin-Key"

var ErrInvalidAdminKey = errors.New("invalid admin key")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminKey creates an HMAC-based admin key for a tournament
// This is deterministic and verifiable
func GenerateAdminKey(tournamentID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(tournamentID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the tournament
func ValidateAdminKey(tournamentID, adminKey, salt string) error {
	expected := GenerateAdminKey(tournamentID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// AdminKeyFromRequest reads the admin key from the header, falling back to
// the "key" query parameter used by page links
func AdminKeyFromRequest(r *http.Request) string {
	if key := r.Header.Get(HeaderAdminKey); key != "" {
		return key
	}
	return r.URL.Query().Get("key")
}
