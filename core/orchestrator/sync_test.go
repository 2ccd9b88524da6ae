package orchestrator

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaforge/core/registry"
	"mediaforge/model"
	"mediaforge/repository"
)

func trackProcessingJob(t *testing.T, repo repository.JobRepository, id string) {
	t.Helper()
	_, err := repo.Create(repository.CreateJobParams{
		GenerationID: id,
		Provider:     "fake",
		ContentType:  model.ContentMusic,
		Prompt:       "prompt " + id,
	})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(id, model.StatusProcessing, ""))
}

func TestSyncCompletesFinishedJob(t *testing.T) {
	p := &fakeMusic{syncState: &registry.SyncState{State: "completed", Done: true}}
	orch, repo := newTestOrchestrator(t, p)
	trackProcessingJob(t, repo, "gen-1")

	report, err := orch.SyncPending(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 0, report.Downloaded)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, job.Status)
}

func TestSyncDownloadsAsset(t *testing.T) {
	p := &fakeMusic{
		syncState: &registry.SyncState{
			State:    "completed",
			Done:     true,
			AssetURL: "http://vendor/asset.mp3",
		},
		asset: []byte("audio bytes"),
	}
	orch, repo := newTestOrchestrator(t, p)
	trackProcessingJob(t, repo, "gen-1")

	report, err := orch.SyncPending(context.Background(), SyncOptions{Download: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Downloaded)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDownloaded, job.Status)
	require.NotEmpty(t, job.OutputPath)

	data, err := os.ReadFile(job.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio bytes"), data)
}

func TestSyncMarksFailedJob(t *testing.T) {
	p := &fakeMusic{syncState: &registry.SyncState{State: "failed", Failed: true, Error: "nsfw prompt"}}
	orch, repo := newTestOrchestrator(t, p)
	trackProcessingJob(t, repo, "gen-1")

	report, err := orch.SyncPending(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, job.Status)
}

func TestSyncKeepsInFlightJob(t *testing.T) {
	p := &fakeMusic{syncState: &registry.SyncState{State: "generating"}}
	orch, repo := newTestOrchestrator(t, p)
	trackProcessingJob(t, repo, "gen-1")

	_, err := orch.SyncPending(context.Background(), SyncOptions{})
	require.NoError(t, err)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, job.Status)
}

// fakeRealtime is a music provider without a status endpoint.
type fakeRealtime struct{}

func (f *fakeRealtime) Descriptor() model.ProviderDescriptor {
	return model.ProviderDescriptor{Name: "realtime", SupportsRealtime: true}
}

func (f *fakeRealtime) Generate(ctx context.Context, req model.MusicRequest) *model.GenerationResult {
	return &model.GenerationResult{Success: true, Provider: "realtime", ContentType: model.ContentMusic}
}

func TestSyncSkipsProviderWithoutStatusEndpoint(t *testing.T) {
	orch, repo := newTestOrchestrator(t, &fakeMusic{})
	orch.registry.RegisterMusic("realtime", &fakeRealtime{})
	_, err := repo.Create(repository.CreateJobParams{
		GenerationID: "gen-1",
		Provider:     "realtime",
		ContentType:  model.ContentMusic,
		Prompt:       "p",
	})
	require.NoError(t, err)

	report, err := orch.SyncPending(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, job.Status)
}

func TestSyncSingleJob(t *testing.T) {
	p := &fakeMusic{syncState: &registry.SyncState{State: "completed", Done: true}}
	orch, repo := newTestOrchestrator(t, p)
	trackProcessingJob(t, repo, "gen-1")
	trackProcessingJob(t, repo, "gen-2")

	report, err := orch.SyncPending(context.Background(), SyncOptions{JobID: "gen-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)

	job, err := repo.Get("gen-2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, job.Status, "other jobs untouched")
}

func TestSyncUnknownJob(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &fakeMusic{})

	_, err := orch.SyncPending(context.Background(), SyncOptions{JobID: "nope"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSyncSkipsTerminalJobWhenTargeted(t *testing.T) {
	p := &fakeMusic{syncState: &registry.SyncState{State: "completed", Done: true}}
	orch, repo := newTestOrchestrator(t, p)
	trackProcessingJob(t, repo, "gen-1")
	require.NoError(t, repo.UpdateStatus("gen-1", model.StatusFailed, ""))

	report, err := orch.SyncPending(context.Background(), SyncOptions{JobID: "gen-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 1, report.Skipped)
}
