package orchestrator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mediaforge/core/registry"
	"mediaforge/model"
	"mediaforge/repository"
)

// fakeMusic returns a canned result and optionally answers status checks.
type fakeMusic struct {
	result *model.GenerationResult
	calls  int

	syncState *registry.SyncState
	asset     []byte
}

func (f *fakeMusic) Descriptor() model.ProviderDescriptor {
	return model.ProviderDescriptor{Name: "fake"}
}

func (f *fakeMusic) Generate(ctx context.Context, req model.MusicRequest) *model.GenerationResult {
	f.calls++
	return f.result
}

func (f *fakeMusic) CheckStatus(ctx context.Context, generationID string) (*registry.SyncState, error) {
	return f.syncState, nil
}

func (f *fakeMusic) DownloadAsset(ctx context.Context, url string) ([]byte, error) {
	return f.asset, nil
}

func newTestOrchestrator(t *testing.T, p registry.MusicProvider) (*Orchestrator, repository.JobRepository) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&model.Job{}))

	repo := repository.NewGormJobRepository(gdb)
	reg := registry.New()
	reg.RegisterMusic("fake", p)

	return New(reg, repo, nil, nil, t.TempDir()), repo
}

func TestGenerateSuccessWithFile(t *testing.T) {
	p := &fakeMusic{result: &model.GenerationResult{
		Success:      true,
		Provider:     "fake",
		ContentType:  model.ContentMusic,
		FilePath:     "/tmp/out.mp3",
		GenerationID: "gen-1",
	}}
	orch, repo := newTestOrchestrator(t, p)

	report, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)
	require.NotNil(t, report.Result)
	assert.Nil(t, report.Duplicate)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDownloaded, job.Status)
	assert.Equal(t, "/tmp/out.mp3", job.OutputPath)
}

func TestGenerateSuccessWithoutFile(t *testing.T) {
	p := &fakeMusic{result: &model.GenerationResult{
		Success:      true,
		Provider:     "fake",
		ContentType:  model.ContentMusic,
		GenerationID: "gen-1",
	}}
	orch, repo := newTestOrchestrator(t, p)

	_, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, job.Status)
}

func TestGenerateFailure(t *testing.T) {
	res := model.Failure("fake", model.ContentMusic, "vendor rejected prompt")
	res.GenerationID = "gen-1"
	p := &fakeMusic{result: res}
	orch, repo := newTestOrchestrator(t, p)

	report, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)
	assert.False(t, report.Result.Success)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, job.Status)
}

func TestGenerateTimeoutStaysInFlight(t *testing.T) {
	res := model.Failure("fake", model.ContentMusic, "generation polling timed out: gen-1 not complete after 30 attempts")
	res.GenerationID = "gen-1"
	res.TimedOut = true
	p := &fakeMusic{result: res}
	orch, repo := newTestOrchestrator(t, p)

	_, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, job.Status)
}

func TestGenerateVendorTimeoutTextStaysInFlight(t *testing.T) {
	// Some vendors report their own timeouts as plain error text with
	// no marker on the result. The job still stays in flight.
	res := model.Failure("fake", model.ContentMusic, "upstream Timeout while rendering")
	res.GenerationID = "gen-1"
	p := &fakeMusic{result: res}
	orch, repo := newTestOrchestrator(t, p)

	_, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)

	job, err := repo.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, job.Status)
}

func TestGenerateWithoutIDIsUntracked(t *testing.T) {
	p := &fakeMusic{result: model.Failure("fake", model.ContentMusic, "connection refused")}
	orch, repo := newTestOrchestrator(t, p)

	report, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)
	assert.Nil(t, report.Job)

	jobs, err := repo.List(repository.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestDuplicateShortCircuits(t *testing.T) {
	p := &fakeMusic{result: &model.GenerationResult{
		Success:      true,
		Provider:     "fake",
		ContentType:  model.ContentMusic,
		FilePath:     "/tmp/out.mp3",
		GenerationID: "gen-1",
	}}
	orch, _ := newTestOrchestrator(t, p)

	_, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, p.calls)

	report, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)
	require.NotNil(t, report.Duplicate)
	assert.Equal(t, "gen-1", report.Duplicate.ID)
	assert.Equal(t, 1, p.calls, "provider must not be invoked again")
}

func TestForceBypassesDuplicateCheck(t *testing.T) {
	p := &fakeMusic{result: &model.GenerationResult{
		Success:      true,
		Provider:     "fake",
		ContentType:  model.ContentMusic,
		GenerationID: "gen-1",
	}}
	orch, _ := newTestOrchestrator(t, p)

	_, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)

	p.result = &model.GenerationResult{
		Success:      true,
		Provider:     "fake",
		ContentType:  model.ContentMusic,
		GenerationID: "gen-2",
	}
	report, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{Force: true})
	require.NoError(t, err)
	assert.Nil(t, report.Duplicate)
	assert.Equal(t, 2, p.calls)
}

func TestFailedJobDoesNotBlockRetry(t *testing.T) {
	res := model.Failure("fake", model.ContentMusic, "vendor error")
	res.GenerationID = "gen-1"
	p := &fakeMusic{result: res}
	orch, _ := newTestOrchestrator(t, p)

	_, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)

	ok := &model.GenerationResult{
		Success:      true,
		Provider:     "fake",
		ContentType:  model.ContentMusic,
		GenerationID: "gen-2",
	}
	p.result = ok
	report, err := orch.GenerateMusic(context.Background(), "fake", model.MusicRequest{Prompt: "lofi"}, Options{})
	require.NoError(t, err)
	assert.Nil(t, report.Duplicate)
}

func TestUnknownProvider(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &fakeMusic{})

	_, err := orch.GenerateMusic(context.Background(), "suno", model.MusicRequest{Prompt: "lofi"}, Options{})
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
