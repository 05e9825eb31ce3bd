// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin keys and ID generation.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(tournamentID, salt)
	err := auth.ValidateAdminKey(tournamentID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same tournament ID and salt always produce the same key. This allows
validation without storing the key in the database.

API clients send the key in the X-Admin-Key header. Page links carry it as
the "key" query parameter; AdminKeyFromRequest accepts both.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
