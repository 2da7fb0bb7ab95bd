package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/metric"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/pricing"
	"carrier_pricing_v1/internal/repository"
	"carrier_pricing_v1/pkg/logger"
)

// PricingService 定价服务
type PricingService struct {
	productRepo repository.ProductRepository
	carrierRepo repository.CarrierRepository
	quoteRepo   repository.QuoteRepository
	rates       exchange.Provider
	engine      *pricing.Engine
	log         logger.Logger
}

func NewPricingService(
	productRepo repository.ProductRepository,
	carrierRepo repository.CarrierRepository,
	quoteRepo repository.QuoteRepository,
	rates exchange.Provider,
	engine *pricing.Engine,
	log logger.Logger,
) *PricingService {
	if log == nil {
		log = logger.Nop()
	}
	return &PricingService{
		productRepo: productRepo,
		carrierRepo: carrierRepo,
		quoteRepo:   quoteRepo,
		rates:       rates,
		engine:      engine,
		log:         log,
	}
}

// ==================== 定价 ====================

// Quote 对商品评估用户的全部渠道，选出陆运/空运最优渠道并保存定价记录
func (s *PricingService) Quote(ctx context.Context, userID int64, req *dto.QuoteReq) (*dto.QuoteResp, error) {
	start := time.Now()
	defer func() { metric.QuoteDuration.Observe(time.Since(start).Seconds()) }()

	policy, err := pricing.ParsePolicy(req.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPolicy, req.Policy)
	}

	product, err := s.loadProduct(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}
	carriers, err := s.carrierRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询物流渠道失败: %w", err)
	}

	quoteID := uuid.NewString()
	ctx = logger.WithQuoteID(ctx, quoteID)

	rates := exchange.SnapshotOf(s.rates)
	evals := s.engine.Evaluate(ctx, product, carriers, rates, pricing.Options{Trace: req.Trace})
	quote := s.engine.BuildQuote(product, evals, rates, policy)

	resp := convertQuoteToResp(quoteID, product.ID, quote, req.Trace)
	s.log.Infof(ctx, "[Pricing] 商品 %d 定价完成: 渠道 %d 个, 陆运=%v, 空运=%v, 建议售价=%.2f",
		product.ID, len(carriers), resp.Land != nil, resp.Air != nil, resp.SuggestedPrice)

	if err := s.saveQuote(ctx, userID, resp, quote); err != nil {
		s.log.Errorf(ctx, "[Pricing] 保存定价记录失败: %v", err)
	}
	return resp, nil
}

func (s *PricingService) saveQuote(ctx context.Context, userID int64, resp *dto.QuoteResp, quote *pricing.Quote) error {
	detail, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	record := &model.PricingQuote{
		QuoteID:   resp.QuoteID,
		UserID:    userID,
		ProductID: resp.ProductID,
		Policy:    string(quote.Policy),
		RubRate:   quote.Rates.RUB,
		UsdRate:   quote.Rates.USD,
		Detail:    datatypes.JSON(detail),
	}
	if quote.Land != nil {
		record.LandCarrierID = quote.Land.Carrier.ID
		price := quote.Land.PriceCNY
		record.LandPrice = &price
	}
	if quote.Air != nil {
		record.AirCarrierID = quote.Air.Carrier.ID
		price := quote.Air.PriceCNY
		record.AirPrice = &price
	}
	return s.quoteRepo.Create(ctx, record)
}

// GetQuote 查询单条定价记录
func (s *PricingService) GetQuote(ctx context.Context, userID int64, quoteID string) (*model.PricingQuote, error) {
	quote, err := s.quoteRepo.GetByQuoteID(ctx, userID, quoteID)
	if err != nil {
		return nil, notFound(err, ErrQuoteNotFound, "查询定价记录失败")
	}
	return quote, nil
}

// ListQuotes 商品最近的定价记录
func (s *PricingService) ListQuotes(ctx context.Context, userID, productID int64, limit int) (*dto.QuoteHistoryResp, error) {
	if _, err := s.loadProduct(ctx, userID, productID); err != nil {
		return nil, err
	}
	quotes, err := s.quoteRepo.ListByProduct(ctx, userID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询定价记录失败: %w", err)
	}
	return &dto.QuoteHistoryResp{ProductID: productID, List: quotes}, nil
}

// ==================== 单渠道查询 ====================

// EvaluateEligibility 判断单个渠道能否承运商品
func (s *PricingService) EvaluateEligibility(ctx context.Context, userID, productID, carrierID int64) (*dto.EligibilityResp, error) {
	product, carrier, err := s.loadPair(ctx, userID, productID, carrierID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.engine.Filter().EvaluateEligibility(carrier, product, exchange.SnapshotOf(s.rates))
	if err != nil {
		return nil, err
	}

	resp := &dto.EligibilityResp{
		ProductID: productID,
		CarrierID: carrierID,
		OK:        verdict.OK,
	}
	if rej := verdict.Rejection; rej != nil {
		resp.Check = string(rej.Check)
		resp.Code = string(rej.Code)
		resp.Reason = rej.Reason
	}
	return resp, nil
}

// ShippingCost 按给定重量试算渠道运费
func (s *PricingService) ShippingCost(ctx context.Context, userID, carrierID int64, weightG float64) (*dto.ShippingCostResp, error) {
	carrier, err := s.loadCarrier(ctx, userID, carrierID)
	if err != nil {
		return nil, err
	}

	cost, err := pricing.ComputeShippingCost(carrier, weightG)
	if err != nil {
		return nil, err
	}

	feeMode := carrier.FeeMode
	if feeMode == "" {
		feeMode = model.FeeBasePlusContinue
	}
	return &dto.ShippingCostResp{
		CarrierID: carrierID,
		FeeMode:   string(feeMode),
		WeightG:   weightG,
		Cost:      cost,
	}, nil
}

// ResolvePrice 按商品实际重量计算运费并反推售价
func (s *PricingService) ResolvePrice(ctx context.Context, userID, productID, carrierID int64) (*dto.ResolvePriceResp, error) {
	product, carrier, err := s.loadPair(ctx, userID, productID, carrierID)
	if err != nil {
		return nil, err
	}

	cost, err := pricing.ComputeShippingCost(carrier, product.WeightG)
	if err != nil {
		return nil, err
	}

	resolver := s.engine.Resolver()
	res, err := resolver.ResolvePrice(product, carrier, cost, exchange.SnapshotOf(s.rates))
	if err != nil {
		return nil, err
	}

	resp := &dto.ResolvePriceResp{
		ProductID:     productID,
		CarrierID:     carrierID,
		Formula:       resolver.Formula().Margin.Name(),
		ShippingCost:  res.ShippingCost,
		LandedCostCNY: res.LandedCostCNY,
		RetailCNY:     res.RetailCNY,
		RetailRUB:     res.RetailRUB,
		WithinBounds:  res.WithinBounds,
	}
	if res.Rejection != nil {
		resp.Code = string(res.Rejection.Code)
		resp.Reason = res.Rejection.Reason
	}
	return resp, nil
}

// ==================== 内部方法 ====================

func (s *PricingService) loadProduct(ctx context.Context, userID, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByUserAndID(ctx, userID, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "查询商品失败")
	}
	return product, nil
}

func (s *PricingService) loadCarrier(ctx context.Context, userID, carrierID int64) (*model.CarrierRule, error) {
	carrier, err := s.carrierRepo.GetByUserAndID(ctx, userID, carrierID)
	if err != nil {
		return nil, notFound(err, ErrCarrierNotFound, "查询物流渠道失败")
	}
	return carrier, nil
}

func (s *PricingService) loadPair(ctx context.Context, userID, productID, carrierID int64) (*model.Product, *model.CarrierRule, error) {
	product, err := s.loadProduct(ctx, userID, productID)
	if err != nil {
		return nil, nil, err
	}
	carrier, err := s.loadCarrier(ctx, userID, carrierID)
	if err != nil {
		return nil, nil, err
	}
	return product, carrier, nil
}

// ==================== 转换 ====================

func convertQuoteToResp(quoteID string, productID int64, q *pricing.Quote, withTrace bool) *dto.QuoteResp {
	resp := &dto.QuoteResp{
		QuoteID:   quoteID,
		ProductID: productID,
		Policy:    string(q.Policy),
		Formula:   q.Formula,
		Rates: dto.RatesResp{
			RUB:       q.Rates.RUB,
			USD:       q.Rates.USD,
			UpdatedAt: q.Rates.UpdatedAt,
		},
		Land:           convertModeQuote(q.Land),
		Air:            convertModeQuote(q.Air),
		SuggestedPrice: q.SuggestedPrice,
		ExpectedProfit: q.ExpectedProfit,
		ProfitMargin:   q.ProfitMargin,
		Evaluations:    make([]dto.EvaluationResp, 0, len(q.Evaluations)),
	}

	for _, ev := range q.Evaluations {
		resp.Evaluations = append(resp.Evaluations, convertEvaluation(ev, withTrace))
	}
	return resp
}

func convertModeQuote(mq *pricing.ModeQuote) *dto.ModeQuoteResp {
	if mq == nil {
		return nil
	}
	c := mq.Carrier
	return &dto.ModeQuoteResp{
		CarrierID:      c.ID,
		CarrierName:    c.Name,
		DeliveryMethod: c.DeliveryMethod,
		PriorityGroup:  string(c.PriorityGroup),
		MinDays:        c.MinDays,
		MaxDays:        c.MaxDays,
		ShippingCost:   mq.ShippingCost,
		LandedCostCNY:  mq.LandedCostCNY,
		PriceCNY:       mq.PriceCNY,
		PriceRUB:       mq.PriceRUB,
		Stats: dto.ModeStatsResp{
			Candidates: mq.Stats.Candidates,
			AvgCost:    mq.Stats.AvgCost,
			CostSaving: mq.Stats.CostSaving,
			AvgDays:    mq.Stats.AvgDays,
			TimeSaving: mq.Stats.TimeSaving,
		},
	}
}

func convertEvaluation(ev pricing.Evaluation, withTrace bool) dto.EvaluationResp {
	r := dto.EvaluationResp{
		CarrierID:   ev.Carrier.ID,
		CarrierName: ev.Carrier.Name,
		Type:        string(ev.Carrier.TransportMode),
	}
	if withTrace {
		r.Trace = ev.Verdict.Trace
	}

	switch {
	case ev.Cancelled():
		r.Status = "cancelled"
		r.Reason = ev.Err.Error()
	case ev.Err != nil:
		r.Status = "config_error"
		r.Reason = ev.Err.Error()
	case ev.Passed():
		r.Status = "passed"
		cost, retail := ev.Result.ShippingCost, ev.Result.RetailCNY
		r.ShippingCost = &cost
		r.RetailCNY = &retail
	default:
		r.Status = "rejected"
		if rej := ev.Verdict.Rejection; rej != nil {
			r.Check = string(rej.Check)
			r.Code = string(rej.Code)
			r.Reason = rej.Reason
		}
	}
	return r
}
