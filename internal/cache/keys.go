package cache

import "fmt"

// ProblemsListKey caches the serialized problems list between analysis runs.
func ProblemsListKey() string {
	return "problems:list"
}

// AnalysisLockKey is the advisory lock serializing analyze-all runs.
func AnalysisLockKey() string {
	return "analysis:lock"
}

func RateLimitKey(clientID string) string {
	return fmt.Sprintf("ratelimit:%s", clientID)
}
