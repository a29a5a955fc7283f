package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

const (
	// cacheFileExtension is the file extension used for cache entries.
	cacheFileExtension = ".json"

	// maxPlainKeyLength bounds keys that are used verbatim as file names.
	maxPlainKeyLength = 100

	// hashedPrefixLength is how much of a sanitized key is kept in front of
	// the digest, for humans browsing the directory.
	hashedPrefixLength = 40

	// digestHexLength is the number of hex characters of the key digest.
	digestHexLength = 32
)

var errEmptyKey = errors.New("cache key cannot be empty")

//nolint:gochecknoglobals // Compiled once.
var (
	plainKeyPattern = regexp.MustCompile(`^[a-z0-9_-]{1,100}$`)
	unsafeRun       = regexp.MustCompile(`[^a-z0-9_-]+`)

	// entryFilePattern matches every file name produced by fileNameForKey.
	entryFilePattern = regexp.MustCompile(`^[a-z0-9_-]{1,100}(\.[0-9a-f]{32})?\.json$`)
)

// fileNameForKey maps a key to its entry file name.
//
// Keys made only of lowercase ASCII letters, digits, '_' and '-' (at most 100
// of them) map to "<key>.json". Any other key, including one with uppercase
// letters, maps to "<sanitized lowercase prefix>.<digest>.json". A plain key
// never contains '.', so the two forms cannot collide, and no two keys map to
// names differing only in case. Returns "" for the empty key.
func fileNameForKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= maxPlainKeyLength && plainKeyPattern.MatchString(key) {
		return key + cacheFileExtension
	}

	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:])[:digestHexLength]

	prefix := strings.Trim(unsafeRun.ReplaceAllString(strings.ToLower(key), "_"), "_")
	if len(prefix) > hashedPrefixLength {
		prefix = prefix[:hashedPrefixLength]
	}
	if prefix == "" {
		prefix = "key"
	}
	return prefix + "." + digest + cacheFileExtension
}

// isEntryFile reports whether name follows the store's naming convention.
func isEntryFile(name string) bool {
	return entryFilePattern.MatchString(name)
}
