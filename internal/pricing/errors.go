package pricing

import (
	"errors"
	"fmt"
)

// ErrConfiguration 渠道或商品参数本身有问题 (不是校验不通过)
var ErrConfiguration = errors.New("pricing configuration error")

// ConfigurationError 计费/定价参数错误，例如续重单位为 0、费率分母 ≤ 0
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is 使 errors.Is(err, ErrConfiguration) 成立
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
