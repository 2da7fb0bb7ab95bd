package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConfigSource 从配置文件读取汇率
// 运维侧更新配置文件中的 exchange.rates.*，下一次刷新生效
type ConfigSource struct {
	mu    sync.RWMutex
	v     *viper.Viper
	keys  map[Pair]string
	rates map[Pair]float64
}

// DefaultConfigKeys 币种对与配置项的映射
var DefaultConfigKeys = map[Pair]string{
	PairRUB: "exchange.rates.rub_cny",
	PairUSD: "exchange.rates.usd_cny",
}

// NewConfigSource 创建配置文件汇率源，并监听配置变更
func NewConfigSource(v *viper.Viper, keys map[Pair]string) *ConfigSource {
	if keys == nil {
		keys = DefaultConfigKeys
	}
	s := &ConfigSource{
		v:     v,
		keys:  keys,
		rates: make(map[Pair]float64, len(keys)),
	}
	s.reload()
	v.OnConfigChange(func(fsnotify.Event) {
		s.reload()
	})
	return s
}

func (s *ConfigSource) reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pair, key := range s.keys {
		s.rates[pair] = s.v.GetFloat64(key)
	}
}

// Fetch 实现 Source
func (s *ConfigSource) Fetch(_ context.Context, pair Pair) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.keys[pair]; !ok {
		return 0, fmt.Errorf("%w: unsupported pair %s", ErrInvalidRate, pair)
	}
	rate := s.rates[pair]
	if !ValidRate(rate) {
		return 0, fmt.Errorf("%w: %s not configured", ErrInvalidRate, pair)
	}
	return rate, nil
}
