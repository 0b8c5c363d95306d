package batch

import "time"

// Status is the terminal state of one conversion attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Failure and skip kinds. Converter kinds are carried through verbatim;
// the post-conversion stages add their own so a converted-but-unarchived
// file is reported distinctly from a fully failed one.
const (
	KindUnsupported       = "unsupported"
	KindFilteredOut       = "filtered-out"
	KindFilterError       = "filter-error"
	KindEngineUnavailable = "engine-unavailable"
	KindConversionError   = "conversion-error"
	KindTimeout           = "timeout"
	KindWriteFailed       = "write-failed"
	KindArchiveFailed     = "archive-failed"
)

// Outcome records the result of exactly one enumerated source file. It is
// created by the orchestrator after the attempt and never mutated
// afterward.
type Outcome struct {
	Source   string        // source file path
	Name     string        // source file name, for display
	Target   string        // output path, when produced
	Archive  string        // archive path, when the original was moved
	Status   Status
	Kind     string // failure or skip kind, empty on success
	Detail   string // human-readable error detail
	Duration time.Duration
}
