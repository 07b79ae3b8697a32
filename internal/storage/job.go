package storage

import (
	"context"

	"github.com/google/uuid"

	"fsm-backend/internal/models"
)

func (s *Storage) CreateJob(ctx context.Context, job *models.Job) error {
	job.ID = uuid.NewString()
	if job.Status == "" {
		job.Status = models.JobStatusScheduled
	}

	query := `
		INSERT INTO jobs (id, title, customer_name, customer_phone, address, status,
			scheduled_at, technician, created_by, organization)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	return s.db.QueryRowContext(ctx, query,
		job.ID,
		job.Title,
		job.CustomerName,
		job.CustomerPhone,
		job.Address,
		job.Status,
		job.ScheduledAt,
		job.Technician,
		job.CreatedBy,
		job.Organization,
	).Scan(&job.CreatedAt)
}

func (s *Storage) ListJobsByOrganization(ctx context.Context, organization string, limit int) ([]models.Job, error) {
	query := `
		SELECT id, title, customer_name, customer_phone, address, status,
			scheduled_at, technician, created_by, organization, created_at
		FROM jobs
		WHERE organization = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	jobs := make([]models.Job, 0)
	if err := s.db.SelectContext(ctx, &jobs, query, organization, limit); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Storage) ListJobsByCreator(ctx context.Context, createdBy string, limit int) ([]models.Job, error) {
	query := `
		SELECT id, title, customer_name, customer_phone, address, status,
			scheduled_at, technician, created_by, organization, created_at
		FROM jobs
		WHERE created_by = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	jobs := make([]models.Job, 0)
	if err := s.db.SelectContext(ctx, &jobs, query, createdBy, limit); err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJobStatus applies a lifecycle transition pushed from the field.
// An empty technician leaves the current assignment untouched.
func (s *Storage) UpdateJobStatus(ctx context.Context, jobID, status, technician string) error {
	query := `
		UPDATE jobs
		SET status = $1,
			technician = COALESCE(NULLIF($2, ''), technician)
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, technician, jobID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrJobNotFound
	}

	return nil
}
