// Package policy decides what happens to an inspected file and which frame a
// compressed copy must fit.
package policy

import "mp4press/internal/media"

// Disposition is the terminal routing decision for a file.
type Disposition int

const (
	MoveToError Disposition = iota
	MoveToDone
	Compress
)

func (d Disposition) String() string {
	switch d {
	case MoveToDone:
		return "move_to_done"
	case Compress:
		return "compress"
	default:
		return "move_to_error"
	}
}

// Decision reasons, recorded in logs and the journal.
const (
	ReasonInvalid      = "invalid"
	ReasonWithinLimit  = "within_limit"
	ReasonExceedsLimit = "exceeds_limit"
	ReasonForced       = "forced"
)

// Limits holds the resolution bounds.
type Limits struct {
	// ShortSideLimit is the largest short side left untouched (inclusive).
	ShortSideLimit int
	// LongSide is the long edge of the target frame.
	LongSide int
}

// DefaultLimits returns the 720p bounds.
func DefaultLimits() Limits {
	return Limits{ShortSideLimit: 720, LongSide: 1280}
}

// Decision pairs a disposition with the rule that produced it.
type Decision struct {
	Disposition Disposition
	Reason      string
}

// Decide maps inspection results to a disposition. It is pure.
func Decide(info media.Info, force bool, limits Limits) Decision {
	if !info.Valid {
		return Decision{Disposition: MoveToError, Reason: ReasonInvalid}
	}
	if info.ShortSide() > limits.ShortSideLimit {
		return Decision{Disposition: Compress, Reason: ReasonExceedsLimit}
	}
	if force {
		return Decision{Disposition: Compress, Reason: ReasonForced}
	}
	return Decision{Disposition: MoveToDone, Reason: ReasonWithinLimit}
}

// IsLandscape reports width > height. Square frames are portrait.
func IsLandscape(width, height int) bool {
	return width > height
}

// TargetFrame returns the exact output dimensions for a source frame.
func TargetFrame(width, height int, limits Limits) (int, int) {
	if IsLandscape(width, height) {
		return limits.LongSide, limits.ShortSideLimit
	}
	return limits.ShortSideLimit, limits.LongSide
}
