package collab

import "time"

// Rate limit policy values from spec.md §6.4. These are policy, not
// invariants: nothing in this package enforces them directly, since
// enforcement belongs to the (out-of-scope) transport adapter; they're
// exposed here so a transport implementation has one canonical source.
const (
	MaxOpsPerMinutePerClient = 300
	MaxConcurrentEditors     = 10
	IdleTimeout              = 5 * time.Minute
)
