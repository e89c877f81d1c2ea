package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
)

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a gorm-backed rebalance record repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *models.RebalanceRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordDate.IsZero() {
		record.RecordDate = time.Now()
	}
	for i := range record.Lines {
		record.Lines[i].RecordID = record.ID
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("%w: create record: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *recordRepository) GetByID(ctx context.Context, id string) (*models.RebalanceRecord, error) {
	var record models.RebalanceRecord
	err := r.db.WithContext(ctx).Preload("Lines").First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get record: %v", apperrors.ErrStorageUnavailable, err)
	}
	return &record, nil
}

func (r *recordRepository) ListByAccount(ctx context.Context, accountNumber string) ([]*models.RebalanceRecord, error) {
	var records []*models.RebalanceRecord
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("account_number = ?", accountNumber).
		Order("record_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %v", apperrors.ErrStorageUnavailable, err)
	}
	return records, nil
}

func (r *recordRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.RebalanceRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("%w: delete record: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}
