package modaction

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeSoft},
		{ErrNoAction, OutcomeSoft},
		{fmt.Errorf("%w in the past 10 lines", ErrNoAction), OutcomeSoft},
		{ErrNoJoin, OutcomeSoft},
		{ErrIncompleteIdentity, OutcomeFatal},
		{fmt.Errorf("line 3: %w", ErrMalformedLine), OutcomeFatal},
		{ErrInvalidRequest, OutcomeFatal},
		{context.Canceled, OutcomeUnknown},
		{errors.New("boom"), OutcomeUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{OutcomeSoft: "soft", OutcomeFatal: "fatal", OutcomeUnknown: "unknown"} {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}
