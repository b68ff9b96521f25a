package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// JobListKey is the fixed key the whole job list is persisted under.
func JobListKey() string {
	return "mediashelf:jobs"
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

// SignedURLKey keys a cached presigned URL by a hash of the object path.
func SignedURLKey(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return fmt.Sprintf("signedurl:%s", hex.EncodeToString(sum[:16]))
}
