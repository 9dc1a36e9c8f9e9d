// Package keys owns the storage-key layout and user-key validation.
//
// The keyspace "item:<ns>:" belongs to itemcache. External code MUST NOT write
// values under this prefix; foreign writes fail wire validation on read and
// are deleted as corruption.
package keys

import (
	"fmt"
	"strings"
)

// Reserved characters in user keys, per the item protocol this bridges.
const Reserved = `{}()/\@:`

// Validate rejects empty keys and keys containing reserved characters.
func Validate(key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}
	if i := strings.IndexAny(key, Reserved); i >= 0 {
		return fmt.Errorf("key %q contains reserved character %q", key, key[i])
	}
	return nil
}

// Storage returns the namespaced storage key for a user key.
func Storage(ns, key string) string {
	return "item:" + ns + ":" + key
}
