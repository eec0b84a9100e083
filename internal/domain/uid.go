package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// ComputeUID derives the stable dedup identity for a feed item. Strategies
// are tried in strict priority order and each carries its own prefix, so
// payloads from different strategies can never collide:
//
//	doi:<lowercased doi>
//	id:<guid/about/atom id>
//	linkhash:<truncated sha256 of the link>
//	hash:<truncated sha256 of the full field set>
//
// Identical item content always yields the identical uid.
func ComputeUID(item CanonicalItem) string {
	if item.DOI != "" {
		return "doi:" + strings.ToLower(item.DOI)
	}
	if item.IDLike != "" {
		return "id:" + item.IDLike
	}
	if item.Link != "" {
		return "linkhash:" + shortHash([]byte(item.Link))
	}
	return "hash:" + shortHash(canonicalFields(item))
}

// canonicalFields serializes the item with map keys, which encoding/json
// emits in sorted order, making the digest independent of field ordering.
func canonicalFields(item CanonicalItem) []byte {
	b, _ := json.Marshal(map[string]string{
		"title":    item.Title,
		"link":     item.Link,
		"id_like":  item.IDLike,
		"pub_date": item.PubDate,
		"doi":      item.DOI,
		"journal":  item.Journal,
	})
	return b
}

func shortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
