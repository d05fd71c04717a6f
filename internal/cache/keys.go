package cache

import "strings"

const (
	GlobalKeyPrefix = "quizmaster"

	attemptServiceName = "attempt"
	quizObjectType     = "quiz"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizKey is the key of the cached quiz aggregate read by the attempt engine.
func QuizKey(quizID string) string {
	return GenerateCacheKey(attemptServiceName, quizObjectType, quizID)
}
