package service

import (
	"context"
	"fmt"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/repository"
)

type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) Create(ctx context.Context, userID int64, req *dto.ProductReq) (*model.Product, error) {
	product := &model.Product{UserID: userID}
	applyProductReq(product, req)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("创建商品失败: %w", err)
	}
	// 显式传 0 的费率在插入时会被列默认值覆盖，需要再写一次
	if hasZeroRate(req) {
		return s.Update(ctx, userID, product.ID, req)
	}
	return s.Get(ctx, userID, product.ID)
}

func (s *ProductService) Get(ctx context.Context, userID, id int64) (*model.Product, error) {
	product, err := s.repo.GetByUserAndID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "查询商品失败")
	}
	return product, nil
}

// Update 整体覆盖，未传的费率保留原值
func (s *ProductService) Update(ctx context.Context, userID, id int64, req *dto.ProductReq) (*model.Product, error) {
	product, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyProductReq(product, req)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("更新商品失败: %w", err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *ProductService) List(ctx context.Context, userID int64, req *dto.ProductListReq) (*dto.ProductListResp, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	products, total, err := s.repo.List(ctx, repository.ProductFilter{
		UserID:   userID,
		Category: req.Category,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("查询商品列表失败: %w", err)
	}

	return &dto.ProductListResp{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     products,
	}, nil
}

func applyProductReq(p *model.Product, req *dto.ProductReq) {
	p.Name = req.Name
	p.RussianName = req.RussianName
	p.Category = req.Category
	p.ModelNo = req.Model

	p.WeightG = req.WeightG
	p.LengthCm = req.LengthCm
	p.WidthCm = req.WidthCm
	p.HeightCm = req.HeightCm
	p.IsCylinder = req.IsCylinder
	p.CylinderDiameter = req.CylinderDiameter
	p.CylinderLength = req.CylinderLength

	p.HasBattery = req.HasBattery
	p.BatteryCapacityWh = req.BatteryCapacityWh
	p.BatteryCapacityMah = req.BatteryCapacityMah
	p.BatteryVoltage = req.BatteryVoltage
	p.HasMSDS = req.HasMSDS
	p.HasFlammable = req.HasFlammable

	p.UnitPrice = req.UnitPrice
	p.ShippingFee = req.ShippingFee
	p.LabelingFee = req.LabelingFee

	// 新建时为 nil 的费率交给列默认值
	setRate(&p.PromotionDiscount, req.PromotionDiscount)
	setRate(&p.PromotionCostRate, req.PromotionCostRate)
	setRate(&p.CommissionRate, req.CommissionRate)
	setRate(&p.WithdrawalFeeRate, req.WithdrawalFeeRate)
	setRate(&p.PaymentProcessingFee, req.PaymentProcessingFee)
	setRate(&p.TargetProfitMargin, req.TargetProfitMargin)
}

func hasZeroRate(req *dto.ProductReq) bool {
	for _, v := range []*float64{
		req.PromotionDiscount, req.PromotionCostRate, req.CommissionRate,
		req.WithdrawalFeeRate, req.PaymentProcessingFee, req.TargetProfitMargin,
	} {
		if v != nil && *v == 0 {
			return true
		}
	}
	return false
}

func setRate(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
