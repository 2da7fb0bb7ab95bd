package repository

import (
	"context"

	"gorm.io/gorm"

	"carrier_pricing_v1/internal/model"
)

// ==================== 接口定义 ====================

// CarrierRepository 物流渠道仓储接口
type CarrierRepository interface {
	Create(ctx context.Context, carrier *model.CarrierRule) error
	Update(ctx context.Context, carrier *model.CarrierRule) error
	Delete(ctx context.Context, userID, id int64) error
	GetByUserAndID(ctx context.Context, userID, id int64) (*model.CarrierRule, error)
	ListByUser(ctx context.Context, userID int64) ([]model.CarrierRule, error)
	ListByUserAndMode(ctx context.Context, userID int64, mode model.TransportMode) ([]model.CarrierRule, error)

	// ListUserIDs 拥有渠道的所有用户，用于夜间批量重算
	ListUserIDs(ctx context.Context) ([]int64, error)

	// UpdatePriorityBands 在一个事务中写回优先级分组
	UpdatePriorityBands(ctx context.Context, userID int64, bands map[int64]model.PriorityBand) error

	// 事务
	WithTx(tx *gorm.DB) CarrierRepository
	Transaction(ctx context.Context, fn func(txRepo CarrierRepository) error) error
}

// ==================== 仓储实现 ====================

type carrierRepo struct {
	db *gorm.DB
}

// NewCarrierRepository 创建渠道仓储
func NewCarrierRepository(db *gorm.DB) CarrierRepository {
	return &carrierRepo{db: db}
}

func (r *carrierRepo) Create(ctx context.Context, carrier *model.CarrierRule) error {
	return r.db.WithContext(ctx).Create(carrier).Error
}

func (r *carrierRepo) Update(ctx context.Context, carrier *model.CarrierRule) error {
	return r.db.WithContext(ctx).Save(carrier).Error
}

func (r *carrierRepo) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.CarrierRule{}).Error
}

func (r *carrierRepo) GetByUserAndID(ctx context.Context, userID, id int64) (*model.CarrierRule, error) {
	var carrier model.CarrierRule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&carrier).Error
	if err != nil {
		return nil, err
	}
	return &carrier, nil
}

func (r *carrierRepo) ListByUser(ctx context.Context, userID int64) ([]model.CarrierRule, error) {
	var carriers []model.CarrierRule
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&carriers).Error
	return carriers, err
}

func (r *carrierRepo) ListByUserAndMode(ctx context.Context, userID int64, mode model.TransportMode) ([]model.CarrierRule, error) {
	var carriers []model.CarrierRule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, mode).
		Order("id ASC").
		Find(&carriers).Error
	return carriers, err
}

func (r *carrierRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.CarrierRule{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *carrierRepo) UpdatePriorityBands(ctx context.Context, userID int64, bands map[int64]model.PriorityBand) error {
	if len(bands) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, band := range bands {
			err := tx.Model(&model.CarrierRule{}).
				Where("user_id = ? AND id = ?", userID, id).
				UpdateColumn("priority_group", band).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *carrierRepo) WithTx(tx *gorm.DB) CarrierRepository {
	return &carrierRepo{db: tx}
}

func (r *carrierRepo) Transaction(ctx context.Context, fn func(txRepo CarrierRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
