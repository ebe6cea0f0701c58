package domain

// AnswerResult is the outcome of a retrieval-augmented query.
type AnswerResult struct {
	// Answer is the generated natural-language answer.
	Answer string

	// Sources lists the URLs of the passages that grounded the answer.
	// Deduplicated, preserving the order in which each URL first appears
	// among the ranked retrieved passages.
	Sources []string
}

// LoadFailure records a single URL that could not be ingested.
type LoadFailure struct {
	// URL is the address that failed to load.
	URL string

	// Reason is a short human-readable description of the failure.
	Reason string
}

// IngestReport summarises one ingestion run for the caller.
type IngestReport struct {
	// Submitted is the number of URLs requested.
	Submitted int

	// Loaded is the number of URLs that yielded usable content.
	Loaded int

	// Passages is the total number of passages indexed.
	Passages int

	// Failures lists the URLs that were skipped and why.
	Failures []LoadFailure
}
