package anonymizer

import (
	"crypto/sha256"
	"encoding/hex"
)

const visitorIDLength = 16

// HashIP derives a stable pseudonymous visitor ID from a client IP. The raw
// address is never stored.
func HashIP(ip, salt string) string {
	hash := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(hash[:])[:visitorIDLength]
}
