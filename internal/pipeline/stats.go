package pipeline

import (
	"time"

	"mp4press/internal/router"
)

// Summary tracks aggregate counters and byte totals across a run.
type Summary struct {
	RunID      string
	Passes     int
	Processed  int
	Done       int
	Compressed int
	Errored    int
	Failed     int
	// InputBytes and OutputBytes cover compressed files only.
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s Summary) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// Add folds another run into s. Used by watch mode to report totals.
func (s *Summary) Add(other Summary) {
	s.Passes += other.Passes
	s.Processed += other.Processed
	s.Done += other.Done
	s.Compressed += other.Compressed
	s.Errored += other.Errored
	s.Failed += other.Failed
	s.InputBytes += other.InputBytes
	s.OutputBytes += other.OutputBytes
	s.Elapsed += other.Elapsed
}

func (s *Summary) observe(out router.Outcome, err error) {
	if err != nil {
		s.Failed++
		return
	}
	s.Processed++
	switch out.Result {
	case router.ResultDone:
		s.Done++
	case router.ResultCompressed:
		s.Compressed++
		s.InputBytes += out.OriginalBytes
		s.OutputBytes += out.OutputBytes
	case router.ResultError:
		s.Errored++
	}
}
