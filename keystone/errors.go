package keystone

import (
	"errors"
	"fmt"

	"github.com/tnicklin/keystonescan/transport"
)

var (
	// ErrInconsistent means upstream data broke an assumption the reconciler
	// depends on, usually after an API schema change.
	ErrInconsistent = errors.New("keystone: inconsistent run data")
	// ErrUnknownAffix means a run named an affix outside the rotation. It is
	// always reported together with ErrInconsistent.
	ErrUnknownAffix = errors.New("keystone: unknown affix")
	// ErrConfig is returned for missing or malformed credentials and roster data.
	ErrConfig = errors.New("keystone: configuration error")
)

// Outcome tells the scan loop whether a character failure stops the run.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRecoverable
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRecoverable:
		return "recoverable"
	default:
		return "fatal"
	}
}

// RecoverableError marks a per-character failure the scan can skip past.
type RecoverableError struct {
	Reason string
	Err    error
}

func (e *RecoverableError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RecoverableError) Unwrap() error { return e.Err }

// Recoverable wraps err so Classify reports it as OutcomeRecoverable.
func Recoverable(reason string, err error) error {
	return &RecoverableError{Reason: reason, Err: err}
}

// Classify maps an error returned while processing one character to an Outcome.
// "No ranked data" from upstream and errors wrapped with Recoverable are
// recoverable; anything else stops the scan.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var recoverable *RecoverableError
	if errors.As(err, &recoverable) {
		return OutcomeRecoverable
	}
	if errors.Is(err, transport.ErrNoData) {
		return OutcomeRecoverable
	}
	return OutcomeFatal
}
