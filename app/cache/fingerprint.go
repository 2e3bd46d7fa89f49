package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mmcdole/gofeed"
)

// Fingerprint derives a stable identity for a feed entry. The entry's own
// GUID wins, then its link, then the title and raw published string
// combined. The same logical entry across repeated fetches must hash the
// same, so only fields the feed itself supplies go into the digest.
func Fingerprint(item *gofeed.Item) string {
	var unique string
	switch {
	case item.GUID != "":
		unique = item.GUID
	case item.Link != "":
		unique = item.Link
	default:
		unique = item.Title + "_" + item.Published
	}

	hash := sha256.Sum256([]byte(unique))
	return hex.EncodeToString(hash[:])
}
