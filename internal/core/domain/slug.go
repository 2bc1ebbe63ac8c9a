package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

const fallbackSlugBase = "user"

// NewSlug derives a URL-safe slug from a display name and appends a random
// suffix, e.g. "ana-3f9c1a". The suffix keeps two users with the same name
// apart; a store-level unique constraint still has the final word.
func NewSlug(name string) string {
	base := slug.Make(name)
	if base == "" {
		base = fallbackSlugBase
	}
	return base + "-" + slugSuffix()
}

func slugSuffix() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06x", time.Now().UnixNano()&0xFFFFFF)
	}
	return hex.EncodeToString(b)
}
