package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// DependencyKey builds a cache key for a loader dependency fetch, combining
// the registry path and the revision/version pin so a changed pin busts the
// cache without re-hashing file contents (§4.1 EXPANSION, loader dependency
// cache).
func DependencyKey(registryPath, version string) string {
	if version == "" {
		return fmt.Sprintf("dep:%s", registryPath)
	}
	return fmt.Sprintf("dep:%s@%s", registryPath, version)
}
