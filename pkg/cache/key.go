package cache

import (
	"strconv"
	"strings"
)

const detailKeyPrefix = "catalog:detail:"

// DetailKey returns the Redis key for an entity id.
//
// Example:
//
//	catalog:detail:25
func DetailKey(id int) string {
	return detailKeyPrefix + strconv.Itoa(id)
}

// ParseDetailKey extracts the id from a key produced by DetailKey.
func ParseDetailKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, detailKeyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
