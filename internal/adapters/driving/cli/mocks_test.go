package cli

import (
	"context"
	"testing"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

// mockIngestService returns a canned report.
type mockIngestService struct {
	report  *domain.IngestReport
	err     error
	gotURLs []string
}

func (m *mockIngestService) Ingest(_ context.Context, urls []string) (*domain.IngestReport, error) {
	m.gotURLs = urls
	return m.report, m.err
}

// mockAnswerService returns a canned answer.
type mockAnswerService struct {
	result      *domain.AnswerResult
	err         error
	gotQuestion string
	gotK        int
}

func (m *mockAnswerService) Answer(_ context.Context, question string, k int) (*domain.AnswerResult, error) {
	m.gotQuestion = question
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// injectServices swaps the package-level services for the duration of
// one test.
func injectServices(t *testing.T, ingest *mockIngestService, answer *mockAnswerService) {
	t.Helper()
	originalIngest, originalAnswer := ingestService, answerService
	ingestService, answerService = ingest, answer
	t.Cleanup(func() {
		ingestService, answerService = originalIngest, originalAnswer
	})
}
