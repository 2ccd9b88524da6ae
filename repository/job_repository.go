package repository

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"gorm.io/gorm"

	"mediaforge/logger"
	"mediaforge/model"
)

// Sentinel errors for job tracking. Invariant violations are data or
// programming errors and propagate to the caller; they are never folded
// into results the way vendor failures are.
var (
	// ErrNotFound indicates the job id is unknown.
	ErrNotFound = errors.New("job not found")

	// ErrDuplicateID indicates a job with the same generation id already exists.
	ErrDuplicateID = errors.New("job id already exists")

	// ErrInvalidTransition indicates a status change outside the state table.
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// CreateJobParams carries everything needed to record a new job.
type CreateJobParams struct {
	GenerationID string
	Provider     string
	ContentType  model.ContentType
	Prompt       string
	Command      string
	Lyrics       string
	ReferenceURL string
	Metadata     map[string]any
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Status   model.JobStatus
	Provider string
	Limit    int
}

// JobRepository defines the interface for job tracking operations. The
// repository is the only writer to the backing store; every mutating
// call is flushed durably before it returns.
type JobRepository interface {
	Create(params CreateJobParams) (*model.Job, error)
	FindDuplicate(prompt, provider string, contentType model.ContentType, lyrics, referenceURL string) (*model.Job, error)
	UpdateStatus(id string, status model.JobStatus, outputPath string) error
	Get(id string) (*model.Job, error)
	List(filter ListFilter) ([]*model.Job, error)
	Pending() ([]*model.Job, error)
	Stats() (*model.JobStats, error)
}

// lockStripes serializes same-id status updates. Different ids hash to
// different stripes and do not block each other.
const lockStripes = 32

// gormJobRepository implements JobRepository on a gorm-managed store.
type gormJobRepository struct {
	db    *gorm.DB
	locks [lockStripes]sync.Mutex
}

// NewGormJobRepository creates a repository over the given connection.
func NewGormJobRepository(db *gorm.DB) JobRepository {
	return &gormJobRepository{db: db}
}

func (r *gormJobRepository) stripe(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &r.locks[h.Sum32()%lockStripes]
}

// Create inserts a new job in queued state and persists it immediately.
func (r *gormJobRepository) Create(params CreateJobParams) (*model.Job, error) {
	if params.GenerationID == "" {
		return nil, fmt.Errorf("create job: empty generation id")
	}

	now := time.Now()
	job := &model.Job{
		ID:          params.GenerationID,
		Provider:    params.Provider,
		ContentType: params.ContentType,
		Prompt:      params.Prompt,
		Fingerprint: model.Fingerprint(params.Prompt, params.Provider, params.ContentType, params.Lyrics, params.ReferenceURL),
		Status:      model.StatusQueued,
		Command:     params.Command,
		Metadata:    params.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The primary key constraint is the only duplicate check, so two
	// concurrent inserts of the same id cannot both land.
	if err := r.db.Create(job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, params.GenerationID)
		}
		return nil, fmt.Errorf("create job %s: %w", params.GenerationID, err)
	}

	logger.Info("job tracked",
		logger.String("job_id", job.ID),
		logger.String("provider", job.Provider),
		logger.String("content_type", string(job.ContentType)))
	return job, nil
}

// FindDuplicate returns the most recent job with the same fingerprint
// whose status is not failed, or nil when every match has failed. A
// still-running or already-completed match lets the caller skip new work.
func (r *gormJobRepository) FindDuplicate(prompt, provider string, contentType model.ContentType, lyrics, referenceURL string) (*model.Job, error) {
	fingerprint := model.Fingerprint(prompt, provider, contentType, lyrics, referenceURL)

	var job model.Job
	err := r.db.
		Where("fingerprint = ? AND status <> ?", fingerprint, model.StatusFailed).
		Order("created_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate: %w", err)
	}
	return &job, nil
}

// UpdateStatus validates the transition against the state table and
// persists the change. Same-id calls are serialized so updates apply in
// the order issued.
func (r *gormJobRepository) UpdateStatus(id string, status model.JobStatus, outputPath string) error {
	mu := r.stripe(id)
	mu.Lock()
	defer mu.Unlock()

	var job model.Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("load job %s: %w", id, err)
	}

	if !job.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s (job %s)", ErrInvalidTransition, job.Status, status, id)
	}

	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}
	if outputPath != "" {
		updates["output_path"] = outputPath
	}

	if err := r.db.Model(&model.Job{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}

	logger.Debug("job status updated",
		logger.String("job_id", id),
		logger.String("from", string(job.Status)),
		logger.String("to", string(status)))
	return nil
}

// Get retrieves a job by id.
func (r *gormJobRepository) Get(id string) (*model.Job, error) {
	var job model.Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

// List returns jobs most-recent-first, bounded by filter.Limit.
func (r *gormJobRepository) List(filter ListFilter) ([]*model.Job, error) {
	q := r.db.Model(&model.Job{}).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Provider != "" {
		q = q.Where("provider = ?", filter.Provider)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var jobs []*model.Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Pending returns all jobs still in flight, for batch resynchronization.
func (r *gormJobRepository) Pending() ([]*model.Job, error) {
	var jobs []*model.Job
	err := r.db.
		Where("status IN ?", []model.JobStatus{model.StatusQueued, model.StatusProcessing}).
		Order("created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("pending jobs: %w", err)
	}
	return jobs, nil
}

// Stats aggregates over the current store. No caching: each call
// reflects the latest persisted state.
func (r *gormJobRepository) Stats() (*model.JobStats, error) {
	stats := &model.JobStats{
		ByStatus:   make(map[model.JobStatus]int64),
		ByProvider: make(map[string]int64),
		ByType:     make(map[model.ContentType]int64),
	}

	if err := r.db.Model(&model.Job{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	// Aliases avoid bare column names like "key" that some engines
	// treat as reserved words.
	type bucket struct {
		BucketKey   string
		BucketCount int64
	}

	var byStatus []bucket
	if err := r.db.Model(&model.Job{}).
		Select("status AS bucket_key, COUNT(*) AS bucket_count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("group by status: %w", err)
	}
	for _, b := range byStatus {
		stats.ByStatus[model.JobStatus(b.BucketKey)] = b.BucketCount
	}

	var byProvider []bucket
	if err := r.db.Model(&model.Job{}).
		Select("provider AS bucket_key, COUNT(*) AS bucket_count").
		Group("provider").
		Scan(&byProvider).Error; err != nil {
		return nil, fmt.Errorf("group by provider: %w", err)
	}
	for _, b := range byProvider {
		stats.ByProvider[b.BucketKey] = b.BucketCount
	}

	var byType []bucket
	if err := r.db.Model(&model.Job{}).
		Select("content_type AS bucket_key, COUNT(*) AS bucket_count").
		Group("content_type").
		Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("group by content type: %w", err)
	}
	for _, b := range byType {
		stats.ByType[model.ContentType(b.BucketKey)] = b.BucketCount
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	if err := r.db.Model(&model.Job{}).
		Where("created_at > ?", cutoff).
		Count(&stats.Recent24h).Error; err != nil {
		return nil, fmt.Errorf("count recent jobs: %w", err)
	}

	return stats, nil
}
