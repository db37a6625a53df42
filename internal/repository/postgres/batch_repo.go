package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"vendex/internal/domain"
	"vendex/internal/port"
)

type batchRepo struct {
	db *sqlx.DB
}

// NewBatchRepo creates a new PostgreSQL-backed BatchRepository.
func NewBatchRepo(db *sqlx.DB) port.BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) CreateBatches(ctx context.Context, batches []*domain.Batch) error {
	if len(batches) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("batchRepo.CreateBatches begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, b := range batches {
		b.CreatedAt = now
		b.UpdatedAt = now
		_, err := tx.ExecContext(ctx,
			`INSERT INTO batches (
				id, document_type, status, priority, documents, total_documents,
				completed, successful, failed, errors,
				submitted_count, submission_failed_count, job_id,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			b.ID, b.DocumentType, b.Status, b.Priority, b.Documents, b.TotalDocuments,
			b.Completed, b.Successful, b.Failed, b.Errors,
			b.SubmittedCount, b.SubmitFailures, b.JobID,
			b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("batchRepo.CreateBatches insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("batchRepo.CreateBatches commit: %w", err)
	}
	return nil
}

func (r *batchRepo) GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	var b domain.Batch
	err := r.db.GetContext(ctx, &b, "SELECT * FROM batches WHERE id = $1", batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("batchRepo.GetByID: %w", err)
	}
	return &b, nil
}

func (r *batchRepo) List(ctx context.Context, filter domain.BatchFilter, offset, limit int) ([]domain.Batch, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.DocumentType != nil {
		args = append(args, *filter.DocumentType)
		where += fmt.Sprintf(" AND document_type = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM batches "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("batchRepo.List count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT * FROM batches %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))
	var batches []domain.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("batchRepo.List: %w", err)
	}
	return batches, total, nil
}

func (r *batchRepo) SetJobID(ctx context.Context, batchID uuid.UUID, jobID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE batches SET job_id = $1, updated_at = $2 WHERE id = $3",
		jobID, time.Now().UTC(), batchID)
	if err != nil {
		return fmt.Errorf("batchRepo.SetJobID: %w", err)
	}
	return nil
}

func (r *batchRepo) MarkSubmitting(ctx context.Context, batchID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE batches SET status = $1, completed = 0, successful = 0, failed = 0,
		   errors = '[]'::jsonb, submitted_count = 0, submission_failed_count = 0,
		   updated_at = $2
		 WHERE id = $3`,
		domain.BatchStatusSubmitting, time.Now().UTC(), batchID)
	if err != nil {
		return fmt.Errorf("batchRepo.MarkSubmitting: %w", err)
	}
	return nil
}

func (r *batchRepo) MarkProcessing(ctx context.Context, batchID uuid.UUID, submitted, failed int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE batches SET status = $1, submitted_count = $2, submission_failed_count = $3,
		   updated_at = $4
		 WHERE id = $5`,
		domain.BatchStatusProcessing, submitted, failed, time.Now().UTC(), batchID)
	if err != nil {
		return fmt.Errorf("batchRepo.MarkProcessing: %w", err)
	}
	return nil
}

// IncrementProgress is a single UPDATE rather than a read-modify-write so it
// stays correct under concurrent callbacks for the same batch. The counter
// snapshot it returns drives completion detection.
func (r *batchRepo) IncrementProgress(ctx context.Context, batchID uuid.UUID, success bool) (*domain.BatchProgress, error) {
	var p domain.BatchProgress
	err := r.db.GetContext(ctx, &p,
		`UPDATE batches SET
		   completed = completed + 1,
		   successful = successful + CASE WHEN $1 THEN 1 ELSE 0 END,
		   failed = failed + CASE WHEN $1 THEN 0 ELSE 1 END,
		   updated_at = $2
		 WHERE id = $3
		 RETURNING completed, successful, failed, total_documents, status`,
		success, time.Now().UTC(), batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("batchRepo.IncrementProgress: %w", err)
	}
	return &p, nil
}

func (r *batchRepo) AppendError(ctx context.Context, batchID uuid.UUID, batchErr domain.BatchError) error {
	payload, err := json.Marshal(batchErr)
	if err != nil {
		return fmt.Errorf("batchRepo.AppendError marshal: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE batches SET errors = errors || $1::jsonb, updated_at = $2 WHERE id = $3`,
		payload, time.Now().UTC(), batchID)
	if err != nil {
		return fmt.Errorf("batchRepo.AppendError: %w", err)
	}
	return nil
}

// MarkTerminal is guarded on the current status so a terminal status is
// assigned exactly once even when duplicate or racing callbacks both observe
// completed == total.
func (r *batchRepo) MarkTerminal(ctx context.Context, batchID uuid.UUID, status domain.BatchStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE batches SET status = $1, completed_at = $2, updated_at = $2
		 WHERE id = $3 AND status IN ($4, $5)`,
		status, time.Now().UTC(), batchID,
		domain.BatchStatusSubmitting, domain.BatchStatusProcessing)
	if err != nil {
		return false, fmt.Errorf("batchRepo.MarkTerminal: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("batchRepo.MarkTerminal rows: %w", err)
	}
	return rows == 1, nil
}

// MarkFailed is guarded to pending/submitting: a batch that reached
// processing crossed the per-document isolation boundary and terminates
// through callbacks or the stale sweep, never as whole-batch failed.
func (r *batchRepo) MarkFailed(ctx context.Context, batchID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE batches SET status = $1, completed_at = $2, updated_at = $2
		 WHERE id = $3 AND status IN ($4, $5)`,
		domain.BatchStatusFailed, time.Now().UTC(), batchID,
		domain.BatchStatusPending, domain.BatchStatusSubmitting)
	if err != nil {
		return false, fmt.Errorf("batchRepo.MarkFailed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("batchRepo.MarkFailed rows: %w", err)
	}
	return rows == 1, nil
}

func (r *batchRepo) ResetForRequeue(ctx context.Context, batchID uuid.UUID, from domain.BatchStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE batches SET status = $1, completed = 0, successful = 0, failed = 0,
		   errors = '[]'::jsonb, submitted_count = 0, submission_failed_count = 0,
		   completed_at = NULL, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		domain.BatchStatusPending, time.Now().UTC(), batchID, from)
	if err != nil {
		return false, fmt.Errorf("batchRepo.ResetForRequeue: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("batchRepo.ResetForRequeue rows: %w", err)
	}
	return rows == 1, nil
}

func (r *batchRepo) ListStale(ctx context.Context, updatedBefore time.Time) ([]domain.Batch, error) {
	var batches []domain.Batch
	err := r.db.SelectContext(ctx, &batches,
		`SELECT * FROM batches
		 WHERE status IN ($1, $2, $3) AND updated_at < $4
		 ORDER BY updated_at`,
		domain.BatchStatusPending, domain.BatchStatusSubmitting, domain.BatchStatusProcessing,
		updatedBefore)
	if err != nil {
		return nil, fmt.Errorf("batchRepo.ListStale: %w", err)
	}
	return batches, nil
}
