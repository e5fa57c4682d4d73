package usecase

import "github.com/xavierca1/consult-intake/internal/entity"

// Each pipeline step reports a soft-fail outcome instead of returning an error: a
// failed step degrades the guarantees of the request but never fails it.

type GuardVerdict int

const (
	GuardNoPrior GuardVerdict = iota
	GuardDuplicate
	GuardRetry
)

func (v GuardVerdict) String() string {
	switch v {
	case GuardDuplicate:
		return "duplicate"
	case GuardRetry:
		return "retry"
	default:
		return "new"
	}
}

type GuardOutcome struct {
	Verdict GuardVerdict
	Prior   *entity.ConsultationSubmission
	// Err is set when the lookup failed and the verdict fell back to GuardNoPrior.
	Err error
}

func (o GuardOutcome) Degraded() bool { return o.Err != nil }

type PersistOutcome struct {
	Submission *entity.ConsultationSubmission
	Persisted  bool
	Err        error
}

func (o PersistOutcome) Degraded() bool { return !o.Persisted }

type LeadOutcome struct {
	Created        bool
	AlreadyExisted bool
	Skipped        bool
	Err            error
}

func (o LeadOutcome) Degraded() bool { return o.Err != nil }

type DispatchOutcome struct {
	Delivered   bool
	ExecutionID string
	Err         error
}

func (o DispatchOutcome) Degraded() bool { return !o.Delivered }

type StatusOutcome struct {
	Updated bool
	Skipped bool
	Err     error
}

func (o StatusOutcome) Degraded() bool { return o.Err != nil }
