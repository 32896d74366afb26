package services

import "github.com/google/uuid"

// mustUUID derives a deterministic UUID from seed for use in table-driven
// tests where the exact id value doesn't matter but stability does.
func mustUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}
