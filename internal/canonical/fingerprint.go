package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint hashes the canonical rendering of v under a domain prefix.
// Format: hex(SHA256(domain + 0x00 + canonical(v))). The separator keeps the
// domain and payload boundary unambiguous.
func Fingerprint(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
