package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("商品不存在")
	ErrCarrierNotFound = errors.New("物流渠道不存在")
	ErrQuoteNotFound   = errors.New("定价记录不存在")
	ErrInvalidPolicy   = errors.New("无效的优选策略")
)

// notFound 记录不存在时返回业务错误，其余错误包装后返回
func notFound(err, sentinel error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", action, err)
}
