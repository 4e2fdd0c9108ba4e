package scoring

import "github.com/formatrack/engagement-api/internal/models"

// CompletionPercentage rolls per-module and per-chapter completion up into one
// percentage: completed entries over total tracked entries, rounded to two
// decimals. A trainee with nothing tracked yet is at 0.00, which is not an
// error.
func CompletionPercentage(modules models.ModuleProgressMap, chapters models.ChapterProgressMap) float64 {
	total := len(modules) + len(chapters)
	if total == 0 {
		return 0
	}
	completed := 0
	for _, entry := range modules {
		if entry.Completed {
			completed++
		}
	}
	for _, entry := range chapters {
		if entry.Completed {
			completed++
		}
	}
	return clampPercent(round2(float64(completed) / float64(total) * 100))
}
