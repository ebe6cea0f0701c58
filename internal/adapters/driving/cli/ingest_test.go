package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestCmd_ReportsCounts(t *testing.T) {
	ingest := &mockIngestService{report: &domain.IngestReport{
		Submitted: 3,
		Loaded:    2,
		Passages:  17,
		Failures: []domain.LoadFailure{
			{URL: "https://example.com/dead", Reason: "HTTP 404"},
		},
	}}
	injectServices(t, ingest, &mockAnswerService{})

	out, err := executeCommand(t, "ingest",
		"https://example.com/a", "https://example.com/b", "https://example.com/dead")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/a", "https://example.com/b", "https://example.com/dead",
	}, ingest.gotURLs)
	assert.Contains(t, out, "skipped https://example.com/dead: HTTP 404")
	assert.Contains(t, out, "Indexed 17 passages from 2 of 3 URLs.")
}

func TestIngestCmd_AllURLsFail(t *testing.T) {
	ingest := &mockIngestService{
		report: &domain.IngestReport{
			Submitted: 1,
			Failures:  []domain.LoadFailure{{URL: "https://example.com/x", Reason: "connection refused"}},
		},
		err: domain.ErrNoContentIngested,
	}
	injectServices(t, ingest, &mockAnswerService{})

	out, err := executeCommand(t, "ingest", "https://example.com/x")

	assert.ErrorIs(t, err, domain.ErrNoContentIngested)
	assert.Contains(t, out, "skipped https://example.com/x: connection refused")
}

func TestIngestCmd_RequiresURLs(t *testing.T) {
	injectServices(t, &mockIngestService{}, &mockAnswerService{})

	_, err := executeCommand(t, "ingest")

	assert.Error(t, err)
}

func TestIngestCmd_ServiceError(t *testing.T) {
	ingest := &mockIngestService{err: errors.New("boom")}
	injectServices(t, ingest, &mockAnswerService{})

	_, err := executeCommand(t, "ingest", "https://example.com/a")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}
