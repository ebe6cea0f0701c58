package driving

import (
	"context"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

// AnswerService answers questions grounded in the indexed passages.
type AnswerService interface {
	// Answer embeds the question, retrieves the k most relevant passages,
	// and generates an answer constrained to them. k <= 0 selects the
	// default. When no passages are retrieved the result carries a fixed
	// insufficient-information answer and no sources, and the completion
	// service is not invoked.
	Answer(ctx context.Context, question string, k int) (*domain.AnswerResult, error)
}
