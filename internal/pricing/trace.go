package pricing

import "fmt"

// tracer 评估轨迹，nil 表示不记录
type tracer struct {
	buf []string
}

func newTracer(enabled bool) *tracer {
	if !enabled {
		return nil
	}
	return &tracer{}
}

func (t *tracer) add(format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.buf = append(t.buf, fmt.Sprintf(format, args...))
}

func (t *tracer) lines() []string {
	if t == nil {
		return nil
	}
	return t.buf
}
