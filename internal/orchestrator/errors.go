package orchestrator

import "errors"

// Failure taxonomy for a query turn. Blocked chunks and empty result sets
// are not errors; they surface as counts in a well-formed response.
var (
	// ErrRetrievalUnavailable means the dense index or reranker could not
	// be reached. No partial answer is fabricated.
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")

	// ErrGenerationTimeout means the generation call exceeded its budget.
	// Distinct from other generation failures so callers can retry or
	// degrade to fast mode.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationFailed covers non-timeout generation backend failures.
	ErrGenerationFailed = errors.New("generation failed")
)
