package photosheet

import "github.com/alnah/go-photosheet/internal/pipeline"

// Transcode admission limits.
const (
	// MinMaxInFlight ensures at least one transcode can run.
	MinMaxInFlight = 1

	// MaxInFlight caps concurrent transcodes to bound decoded image memory
	// and open file descriptors.
	MaxInFlight = pipeline.DefaultMaxInFlight

	// DefaultBatchSize is the number of images handed to the assembler at once.
	DefaultBatchSize = pipeline.DefaultBatchSize
)

// ResolveMaxInFlight determines the transcode concurrency.
// Explicit values are clamped to [MinMaxInFlight, MaxInFlight]; zero or
// negative selects MaxInFlight.
// Exported for use by CLIs.
func ResolveMaxInFlight(workers int) int {
	if workers <= 0 {
		return MaxInFlight
	}
	return min(max(workers, MinMaxInFlight), MaxInFlight)
}
