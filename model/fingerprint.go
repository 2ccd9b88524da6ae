package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives the deduplication hash for a generation request.
// It covers only the semantically distinguishing fields; optional fields
// are omitted when empty so a request without lyrics hashes the same
// regardless of how the caller spelled "no lyrics". The digest is built
// from sorted key=value lines, so it is independent of argument order.
func Fingerprint(prompt, provider string, contentType ContentType, lyrics, referenceURL string) string {
	parts := map[string]string{
		"content_type": string(contentType),
		"prompt":       prompt,
		"provider":     provider,
	}
	if lyrics != "" {
		parts["lyrics"] = lyrics
	}
	if referenceURL != "" {
		parts["reference_url"] = referenceURL
	}

	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, parts[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
