// Package metrics provides application-level counters using stdlib expvar.
// expvar registers its /debug/vars handler on http.DefaultServeMux; the
// vecfsd HTTP API serves its own mux, so it does not expose that route.
package metrics

import "expvar"

// Operation counters, one per tool the dispatcher exposes.
var (
	SearchTotal    = expvar.NewInt("vecfs_search_total")
	MemorizeTotal  = expvar.NewInt("vecfs_memorize_total")
	FeedbackTotal  = expvar.NewInt("vecfs_feedback_total")
	DeleteTotal    = expvar.NewInt("vecfs_delete_total")
	NotFoundTotal  = expvar.NewInt("vecfs_not_found_total")
	EmbedderErrors = expvar.NewInt("vecfs_embedder_errors_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
