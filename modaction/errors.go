package modaction

import "errors"

var (
	// ErrNoAction means no moderation action was found in the scanned lines.
	ErrNoAction = errors.New("no action found")
	// ErrNoJoin means the affected user's join line is not in the transcript.
	ErrNoJoin = errors.New("join line not found")
	// ErrIncompleteIdentity means nick or host is still unknown after resolution.
	ErrIncompleteIdentity = errors.New("nick or host could not be determined")
	// ErrMalformedLine means a line matched the grammar but broke an invariant,
	// such as a hostmask with no "@".
	ErrMalformedLine = errors.New("malformed log line")
	// ErrInvalidRequest means request limits or the channel were rejected.
	ErrInvalidRequest = errors.New("invalid request")
)

// Outcome says how a caller should treat a pipeline error.
type Outcome int

const (
	// OutcomeSoft errors are "nothing there"; callers degrade and continue.
	OutcomeSoft Outcome = iota
	// OutcomeFatal errors abort the request; the record is unusable.
	OutcomeFatal
	// OutcomeUnknown covers errors from collaborators (I/O, cancellation).
	OutcomeUnknown
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSoft:
		return "soft"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify sorts err into an Outcome. A nil error is soft.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSoft
	case errors.Is(err, ErrNoAction), errors.Is(err, ErrNoJoin):
		return OutcomeSoft
	case errors.Is(err, ErrIncompleteIdentity),
		errors.Is(err, ErrMalformedLine),
		errors.Is(err, ErrInvalidRequest):
		return OutcomeFatal
	}
	return OutcomeUnknown
}
