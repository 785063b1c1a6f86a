package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// normalizeUsername must produce exactly the value UserRepository.FindByUsername
// matches on. Usernames are case-sensitive there, so only whitespace is trimmed.
func normalizeUsername(v string) string {
	return strings.TrimSpace(v)
}

func hashKey(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
