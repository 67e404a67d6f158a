package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"txnproc/internal/engine"
	"txnproc/internal/errors"
	"txnproc/internal/ledger"
	"txnproc/internal/models"
	"txnproc/internal/repository"
)

type BatchService interface {
	Process(ctx context.Context, req *models.ProcessBatchRequest) (*models.ProcessBatchResult, error)
	GetDecisions(ctx context.Context, batchID string) ([]models.Decision, error)
}

// BatchServiceImpl runs submitted batches through the validation engine
// and archives the resulting decision log. The archive may be nil when
// disabled by configuration; processing then still works but archived
// lookups do not.
type BatchServiceImpl struct {
	engine  *engine.Engine
	archive repository.BatchArchive
	logger  *slog.Logger
}

func NewBatchService(eng *engine.Engine, archive repository.BatchArchive, logger *slog.Logger) *BatchServiceImpl {
	return &BatchServiceImpl{
		engine:  eng,
		archive: archive,
		logger:  logger,
	}
}

func (s *BatchServiceImpl) Process(ctx context.Context, req *models.ProcessBatchRequest) (*models.ProcessBatchResult, error) {
	if err := s.validateProcessRequest(req); err != nil {
		s.logger.Warn("invalid process batch request",
			"accounts", len(req.Accounts),
			"transactions", len(req.Transactions),
			"error", err.Error(),
		)
		return nil, err
	}

	led, err := ledger.New(req.Accounts)
	if err != nil {
		s.logger.Warn("failed to build ledger from batch accounts",
			"error", err.Error(),
		)
		return nil, errors.NewValidationError("accounts", err.Error())
	}

	batchID := uuid.New().String()
	decisions := s.engine.ProcessBatch(led, req.Transactions)

	result := &models.ProcessBatchResult{
		BatchID:   batchID,
		Decisions: decisions,
		Balances:  led.Snapshot(),
	}

	if s.archive != nil {
		if err := s.archive.SaveBatch(ctx, batchID, decisions); err != nil {
			// The batch outcome is still valid; archiving is best effort.
			s.logger.Error("failed to archive batch decisions",
				"batch_id", batchID,
				"error", err.Error(),
			)
		}
	}

	s.logger.Info("batch processed",
		"batch_id", batchID,
		"transactions", len(req.Transactions),
		"accounts", len(req.Accounts),
	)
	return result, nil
}

func (s *BatchServiceImpl) GetDecisions(ctx context.Context, batchID string) ([]models.Decision, error) {
	if batchID == "" {
		return nil, errors.NewValidationError("batch_id", "must be non-empty")
	}
	if s.archive == nil {
		return nil, errors.ErrArchiveDisabled
	}

	decisions, err := s.archive.GetDecisions(ctx, batchID)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Warn("batch not found in archive",
				"batch_id", batchID,
			)
			return nil, err
		}
		s.logger.Error("failed to get archived decisions",
			"batch_id", batchID,
			"error", err.Error(),
		)
		return nil, err
	}
	return decisions, nil
}

func (s *BatchServiceImpl) validateProcessRequest(req *models.ProcessBatchRequest) error {
	if len(req.Transactions) == 0 {
		return errors.ErrEmptyBatch
	}
	for _, tx := range req.Transactions {
		if tx.ID == "" {
			return errors.NewValidationError("transactions", "transaction id must be non-empty")
		}
	}
	return nil
}
