package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// NoExpiration configures a layer that never expires its entries. The
// disk layer runs with it for revision JSON: a revision is immutable,
// so once stored it stays valid forever.
const NoExpiration time.Duration = -1

// Cache is a byte store with layer-owned expiry. Callers never pick a
// TTL per entry; each layer applies the policy it was constructed with.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Key builds the storage key for a logical identifier such as
// "entity:Q42:2349872". Hashing keeps the variable part filename-safe;
// the prefix versions the stored format.
func Key(id string) string {
	hash := sha256.Sum256([]byte(id))
	return "vigil-v1-" + hex.EncodeToString(hash[:])
}
