package pricing

import (
	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
)

var testRates = exchange.Rates{RUB: 0.09, USD: 7.2}

func newProduct() *model.Product {
	return &model.Product{
		WeightG:              250,
		LengthCm:             20,
		WidthCm:              10,
		HeightCm:             5,
		UnitPrice:            10,
		PromotionDiscount:    0.05,
		PromotionCostRate:    0.115,
		CommissionRate:       0.17,
		WithdrawalFeeRate:    0.01,
		PaymentProcessingFee: 0.01,
		TargetProfitMargin:   0.5,
	}
}

func newCarrier(id int64, mode model.TransportMode) *model.CarrierRule {
	c := &model.CarrierRule{
		Name:              "carrier",
		TransportMode:     mode,
		MaxWeight:         10000,
		VolumeMode:        model.VolumeNone,
		VolumeCoefficient: model.DefaultVolumeCoefficient,
		FeeMode:           model.FeeBasePlusContinue,
		BaseFee:           20,
		ContinueFee:       2,
		ContinueUnitG:     100,
	}
	c.ID = id
	return c
}
