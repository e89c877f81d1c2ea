package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/models"
	"github.com/upwardright/rebalance/internal/repositories"
)

type recordService struct {
	records repositories.RecordRepository
	logger  *zap.Logger
}

// NewRecordService creates the rebalancing-record service.
func NewRecordService(records repositories.RecordRepository, logger *zap.Logger) RecordService {
	return &recordService{records: records, logger: logger}
}

func (s *recordService) Save(ctx context.Context, record *models.RebalanceRecord) error {
	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to save rebalance record: %w", err)
	}
	s.logger.Info("rebalance record saved",
		zap.String("id", record.ID),
		zap.String("account", record.AccountNumber),
		zap.Int("lines", len(record.Lines)))
	return nil
}

func (s *recordService) Get(ctx context.Context, id string) (*models.RebalanceRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *recordService) ListByAccount(ctx context.Context, accountNumber string) ([]*models.RebalanceRecord, error) {
	return s.records.ListByAccount(ctx, accountNumber)
}

func (s *recordService) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("rebalance record deleted", zap.String("id", id))
	return nil
}
