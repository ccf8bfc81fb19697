package cache

import "fmt"

const metadataKeyPrefix = "gradequest:meta:"

// MetadataKey is the cache key of one subject's assignment metadata.
func MetadataKey(subject string) string {
	return fmt.Sprintf("%s%s", metadataKeyPrefix, subject)
}

// MetadataPattern matches every metadata key.
func MetadataPattern() string {
	return metadataKeyPrefix + "*"
}
