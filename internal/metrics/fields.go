package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrProvider = "provider"
	AttrEvent    = "event"
	AttrOutcome  = "outcome"
	AttrSink     = "sink"
	AttrDriver   = "driver"
)

// Outcome values attached to scoring, publish and archive counters.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeDropped  = "dropped"
)

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
