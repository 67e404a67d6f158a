package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"txnproc/internal/errors"
	"txnproc/internal/models"
)

// BatchArchive persists the decision log of completed batches for later
// audit queries. The validation engine never reads from the archive; it
// is a write-side sink, like the batch output files.
type BatchArchive interface {
	SaveBatch(ctx context.Context, batchID string, decisions []models.Decision) error
	GetBatch(ctx context.Context, batchID string) (*models.BatchRecord, error)
	GetDecisions(ctx context.Context, batchID string) ([]models.Decision, error)
}

type PostgresBatchArchive struct {
	db *sql.DB
}

func NewBatchArchive(db *sql.DB) *PostgresBatchArchive {
	return &PostgresBatchArchive{db: db}
}

// SaveBatch stores a batch header and its full decision log in one db
// transaction, preserving decision order via an explicit sequence column.
func (r *PostgresBatchArchive) SaveBatch(ctx context.Context, batchID string, decisions []models.Decision) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewArchiveError("begin", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO batches (id, created_at) VALUES ($1, CURRENT_TIMESTAMP)`
	if _, err := tx.ExecContext(ctx, query, batchID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.ErrBatchAlreadyArchived
		}
		return errors.NewArchiveError("insert batch", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO batch_decisions (batch_id, seq, transaction_id, status, reason)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return errors.NewArchiveError("prepare decisions insert", err)
	}
	defer stmt.Close()

	for i, decision := range decisions {
		if _, err := stmt.ExecContext(ctx, batchID, i, decision.TransactionID, decision.Status, decision.Reason); err != nil {
			return errors.NewArchiveError("insert decision", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewArchiveError("commit", err)
	}
	return nil
}

func (r *PostgresBatchArchive) GetBatch(ctx context.Context, batchID string) (*models.BatchRecord, error) {
	query := `SELECT id, created_at FROM batches WHERE id = $1`

	record := &models.BatchRecord{}
	err := r.db.QueryRowContext(ctx, query, batchID).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch by ID: %w", err)
	}
	return record, nil
}

// GetDecisions returns the archived decision log of a batch in the order
// the transactions were processed.
func (r *PostgresBatchArchive) GetDecisions(ctx context.Context, batchID string) ([]models.Decision, error) {
	if _, err := r.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}

	query := `SELECT transaction_id, status, reason
		FROM batch_decisions
		WHERE batch_id = $1
		ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get decisions by batch ID: %w", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		var decision models.Decision
		if err := rows.Scan(&decision.TransactionID, &decision.Status, &decision.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, decision)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over decisions: %w", err)
	}
	return decisions, nil
}
