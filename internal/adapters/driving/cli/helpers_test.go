package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-sync/inkwell/internal/adapters/driven/storage/memory"
	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driving"
)

// setupTestServices swaps the package-level services for in-memory fakes
// and returns a cleanup that restores the originals.
func setupTestServices() func() {
	oldOrchestrator := orchestrator
	oldJobService := jobService
	oldSourceStore := sourceStore
	oldCipher := credCipher

	orchestrator = &mockOrchestrator{}
	jobService = &mockJobService{}
	sourceStore = memory.NewSourceStore()
	credCipher = &mockCipher{}

	return func() {
		orchestrator = oldOrchestrator
		jobService = oldJobService
		sourceStore = oldSourceStore
		credCipher = oldCipher
	}
}

type mockOrchestrator struct {
	started    []string
	stopped    []string
	synced     []string
	syncErr    error
	testResult domain.ConnectionTestResult
	testErr    error
	status     driving.OrchestratorStatus
}

var _ driving.Orchestrator = (*mockOrchestrator)(nil)

func (m *mockOrchestrator) StartMonitoring(_ context.Context, sourceID string) error {
	m.started = append(m.started, sourceID)
	return nil
}

func (m *mockOrchestrator) StopMonitoring(_ context.Context, sourceID string) error {
	m.stopped = append(m.stopped, sourceID)
	return domain.ErrMonitorNotFound
}

func (m *mockOrchestrator) TriggerSync(_ context.Context, sourceID string) error {
	if m.syncErr != nil {
		return m.syncErr
	}
	m.synced = append(m.synced, sourceID)
	return nil
}

func (m *mockOrchestrator) TestConnection(context.Context, string) (domain.ConnectionTestResult, error) {
	return m.testResult, m.testErr
}

func (m *mockOrchestrator) Status() driving.OrchestratorStatus {
	return m.status
}

type mockJobService struct {
	jobs      []domain.ConversionJob
	logs      []domain.SyncLog
	created   *domain.ConversionJob
	retried   *domain.ConversionJob
	retryErr  error
	cancelErr error
	cancelled []string
}

var _ driving.JobService = (*mockJobService)(nil)

func (m *mockJobService) CreateManualJob(_ context.Context, sourceID, fileRef string) (*domain.ConversionJob, error) {
	if m.created == nil {
		return nil, fmt.Errorf("file %s: %w", fileRef, domain.ErrNotFound)
	}
	return m.created, nil
}

func (m *mockJobService) RetryJob(context.Context, string) (*domain.ConversionJob, error) {
	if m.retryErr != nil {
		return nil, m.retryErr
	}
	return m.retried, nil
}

func (m *mockJobService) CancelJob(_ context.Context, jobID string) error {
	if m.cancelErr != nil {
		return m.cancelErr
	}
	m.cancelled = append(m.cancelled, jobID)
	return nil
}

func (m *mockJobService) GetJob(_ context.Context, jobID string) (*domain.ConversionJob, error) {
	for i := range m.jobs {
		if m.jobs[i].ID == jobID {
			return &m.jobs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockJobService) ListJobs(context.Context, string, int) ([]domain.ConversionJob, error) {
	return m.jobs, nil
}

func (m *mockJobService) GetLogs(context.Context, string, int) ([]domain.SyncLog, error) {
	return m.logs, nil
}

type mockCipher struct{}

func (mockCipher) Encrypt(plain string) (string, error) { return "enc:" + plain, nil }

func (mockCipher) Decrypt(blob string) (string, error) { return blob[len("enc:"):], nil }

func testJobRecord(id string, status domain.JobStatus) domain.ConversionJob {
	return domain.ConversionJob{
		ID:        id,
		SourceID:  "s1",
		FileName:  "report.docx",
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}
