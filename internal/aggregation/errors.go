package aggregation

import "errors"

// The pipeline's error taxonomy, alongside v1.ErrBadTimestamp and
// v1.ErrInvalidEvent. All of them are absorbed at the per-event or per-pass
// boundary and logged; none propagate to the scheduler. Staleness of the
// checkpoint is the only operator-visible failure signal.
var (
	// ErrFetch covers transport failures and non-2xx responses from the
	// events API. The pass is treated as "no events" and the checkpoint is
	// left untouched.
	ErrFetch = errors.New("event fetch failed")

	// ErrStore covers counter read/write failures against the dashboard
	// store. The affected event is retried on a later pass as long as the
	// checkpoint has not moved past it.
	ErrStore = errors.New("dashboard store failure")
)
