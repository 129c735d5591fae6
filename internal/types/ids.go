package types

import (
	"time"

	"github.com/google/uuid"
)

// NewRelationID generates a UUIDv7 catalog identifier.
// Time-ordered IDs keep catalog inserts clustered in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRelationID() RelationID {
	return RelationID(uuid.Must(uuid.NewV7()).String())
}

// ParseRelationID validates and converts a string to RelationID.
func ParseRelationID(s string) (RelationID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return RelationID(s), nil
}

// RelationIDTime extracts the registration timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RelationIDTime(id RelationID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
