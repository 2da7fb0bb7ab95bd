package pricing

import (
	"math"
	"strconv"
)

// num 数值格式化，整数不带小数位 (70 而非 70.00)
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
