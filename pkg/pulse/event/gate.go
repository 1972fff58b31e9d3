package event

import "context"

// DefaultGateFlag is the feature flag consulted before dispatch when a
// gate evaluator is configured.
const DefaultGateFlag = "event-processing-enabled"

// GateContext carries the tenant/actor context of the event being gated.
type GateContext struct {
	UserID         string
	OrganizationID string
}

// Decision is a gating collaborator's answer.
type Decision struct {
	// Value is the flag value: bool, string, or number.
	Value any

	// Reason explains the evaluation, for logging.
	Reason string
}

// Allows reports whether the decision permits processing.
// A falsy value (nil, false, empty string, zero number) means skip.
func (d Decision) Allows() bool {
	switch v := d.Value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// GateEvaluator is the external gating collaborator consulted before
// dispatch. The bus consumes this contract; it does not own an
// implementation. Evaluation errors are swallowed and processing
// proceeds (fail-open), so a collaborator outage never blocks the bus.
type GateEvaluator interface {
	Evaluate(ctx context.Context, flagKey string, gctx GateContext) (Decision, error)
}
