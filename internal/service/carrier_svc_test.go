package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/repository"
)

func landReq(name string, minDays, maxDays int) *dto.CarrierReq {
	return &dto.CarrierReq{
		Name:        name,
		Type:        "land",
		MinDays:     minDays,
		MaxDays:     maxDays,
		MaxWeight:   10000,
		BaseFee:     20,
		ContinueFee: 2,
	}
}

// ==================== PriorityService ====================

func TestPriorityService_Recompute(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewCarrierRepository(db)
	svc := NewPriorityService(repo, nil)
	ctx := context.Background()

	// 均值: 最快 4.67, 最慢 6.67, 平均 5.67
	ids := make([]int64, 0, 3)
	for _, d := range [][2]int{{2, 4}, {4, 6}, {8, 10}} {
		c := &model.CarrierRule{UserID: 1, Name: "陆运", TransportMode: model.TransportLand, MinDays: d[0], MaxDays: d[1]}
		require.NoError(t, repo.Create(ctx, c))
		ids = append(ids, c.ID)
	}
	noData := &model.CarrierRule{UserID: 1, Name: "无时效", TransportMode: model.TransportLand}
	require.NoError(t, repo.Create(ctx, noData))

	resp, err := svc.Recompute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", resp.Bands[ids[0]])
	assert.Equal(t, "E", resp.Bands[noData.ID])
	assert.Equal(t, 1, resp.Counts["E"])

	got, err := repo.GetByUserAndID(ctx, 1, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.BandA, got.PriorityGroup)

	got, err = repo.GetByUserAndID(ctx, 1, ids[2])
	require.NoError(t, err)
	assert.Equal(t, model.BandD, got.PriorityGroup)
}

func TestPriorityService_RecomputeAll(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewCarrierRepository(db)
	svc := NewPriorityService(repo, nil)
	ctx := context.Background()

	for _, userID := range []int64{1, 2, 3} {
		c := &model.CarrierRule{UserID: userID, Name: "陆运", TransportMode: model.TransportLand, MinDays: 3, MaxDays: 5}
		require.NoError(t, repo.Create(ctx, c))
	}

	ok, failed, err := svc.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ok)
	assert.Zero(t, failed)

	all, err := repo.ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, all, 1)
	// 只有一个渠道时它就是平均值，严格小于不命中
	assert.Equal(t, model.BandD, all[0].PriorityGroup)
}

// ==================== CarrierService ====================

func TestCarrierService_WritesRecomputeBands(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewCarrierRepository(db)
	svc := NewCarrierService(repo, NewPriorityService(repo, nil), nil)
	ctx := context.Background()

	slow, err := svc.Create(ctx, 1, landReq("慢线", 20, 30))
	require.NoError(t, err)
	assert.Equal(t, model.BandD, slow.PriorityGroup, "唯一渠道即为平均值")
	assert.Equal(t, float64(model.DefaultContinueUnitG), slow.ContinueUnitG)
	assert.Equal(t, model.FeeBasePlusContinue, slow.FeeMode)

	fast, err := svc.Create(ctx, 1, landReq("快线", 5, 8))
	require.NoError(t, err)
	assert.Equal(t, model.BandA, fast.PriorityGroup)

	slow, err = svc.Get(ctx, 1, slow.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BandD, slow.PriorityGroup)

	// 更新后重新分组
	updated, err := svc.Update(ctx, 1, slow.ID, landReq("慢线", 1, 2))
	require.NoError(t, err)
	assert.Equal(t, model.BandA, updated.PriorityGroup)

	list, err := svc.List(ctx, 1, model.TransportLand)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	list, err = svc.List(ctx, 1, model.TransportAir)
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	require.NoError(t, svc.Delete(ctx, 1, slow.ID))
	assert.ErrorIs(t, svc.Delete(ctx, 1, slow.ID), ErrCarrierNotFound)

	_, err = svc.Update(ctx, 2, fast.ID, landReq("快线", 5, 8))
	assert.ErrorIs(t, err, ErrCarrierNotFound)
}

// ==================== ExchangeRateService ====================

type stubRateSource struct {
	rates     map[exchange.Pair]float64
	updated   map[exchange.Pair]time.Time
	refreshed int
}

func (s *stubRateSource) CurrentRate(pair exchange.Pair) float64    { return s.rates[pair] }
func (s *stubRateSource) LastUpdated(pair exchange.Pair) time.Time { return s.updated[pair] }
func (s *stubRateSource) Refresh(context.Context)                   { s.refreshed++ }

func TestExchangeRateService(t *testing.T) {
	at := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	src := &stubRateSource{
		rates:   map[exchange.Pair]float64{exchange.PairRUB: 0.09, exchange.PairUSD: 7.2},
		updated: map[exchange.Pair]time.Time{exchange.PairUSD: at},
	}
	svc := NewExchangeRateService(src)

	resp := svc.Current()
	require.Len(t, resp.Rates, 2)
	assert.Equal(t, "RUB/CNY", resp.Rates[0].Pair)
	assert.Equal(t, 0.09, resp.Rates[0].Rate)
	assert.Nil(t, resp.Rates[0].UpdatedAt, "从未刷新")
	require.NotNil(t, resp.Rates[1].UpdatedAt)
	assert.True(t, resp.Rates[1].UpdatedAt.Equal(at))

	svc.Refresh(context.Background())
	assert.Equal(t, 1, src.refreshed)
}
