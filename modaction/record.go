// Package modaction reconstructs the most recent moderation action from a
// channel transcript: which line it was, who acted, who was affected, why and
// for how long, and which slice of the transcript gives it context.
//
// The stages are plain functions over in-memory lines and run in order:
// Locate, Extract, Resolve, Backtrack, then FindJoin and Prettify to cut the
// window. Correlator wires them to a transcript source.
package modaction

// Result is the moderation outcome, spelled the way the moderation
// spreadsheet expects it.
type Result string

const (
	ResultKick          Result = "Kick"
	ResultPermanentBan  Result = "Permanent Ban"
	ResultTimedBan      Result = "Timed Ban"
	ResultPermanentMute Result = "Permanent Mute"
	ResultTimedMute     Result = "Timed Mute"
)

// IsBan reports whether r is a ban, timed or not.
func (r Result) IsBan() bool { return r == ResultPermanentBan || r == ResultTimedBan }

// IsMute reports whether r is a mute, timed or not.
func (r Result) IsMute() bool { return r == ResultPermanentMute || r == ResultTimedMute }

// Timed returns the timed variant of a ban or mute. Kicks have no duration
// and are returned unchanged.
func (r Result) Timed() Result {
	switch {
	case r.IsBan():
		return ResultTimedBan
	case r.IsMute():
		return ResultTimedMute
	}
	return r
}

// Record is what is known about one moderation action. An empty field is
// absent. Fields are only ever added; Result may be downgraded from a
// permanent to a timed variant by Backtrack.
type Record struct {
	Result   Result `json:"result,omitempty"`
	Nick     string `json:"nick,omitempty"`
	Host     string `json:"host,omitempty"`
	Operator string `json:"operator,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Length   string `json:"length,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

// Complete reports whether both halves of the affected user's identity are
// known.
func (r Record) Complete() bool { return r.Nick != "" && r.Host != "" }

// IsZero reports whether nothing is known.
func (r Record) IsZero() bool { return r == Record{} }
