// internal/core/services/types.go
package services

import "time"

// Cache keys for derived data. Stock mutations invalidate both.
const (
	cacheKeyValuationSummary = "valuation:summary"
	cacheKeyReorderReport    = "valuation:reorder"
)

// derivedCacheTTL bounds staleness of cached aggregates between
// invalidations.
const derivedCacheTTL = 5 * time.Minute
