package models

import "time"

// EngineMetrics represents engine-level counters captured from instrumentation.
type EngineMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	AssessmentsTotal         uint64    `json:"assessments_total"`
	AtRiskAssessments        uint64    `json:"at_risk_assessments"`
	BulkBatchesTotal         uint64    `json:"bulk_batches_total"`
	BulkBatchFailures        uint64    `json:"bulk_batch_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
