// Package refreshtokens manages the single refresh-token slot stored on each
// user row.
package refreshtokens

import "context"

type Repository interface {
	// Get returns the current token, "" when the slot is empty.
	Get(ctx context.Context, userID string) (string, error)
	// Set overwrites the slot unconditionally.
	Set(ctx context.Context, userID, token string) error
	// Swap replaces old with new only if old is still current.
	Swap(ctx context.Context, userID, old, new string) (bool, error)
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, userID string) error
}
