package cache

import "strings"

const (
	GlobalKeyPrefix = "kioskquiz"
	stateObjectType = "state"
)

// GenerateKey builds a Redis key for a kiosk, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the key.
func GenerateKey(kioskID, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, kioskID, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// GenerateStateKey builds the key of one persisted kiosk state entry
func GenerateStateKey(kioskID, name string) string {
	return GenerateKey(kioskID, stateObjectType, name)
}
