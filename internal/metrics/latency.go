// Package metrics 记录求值耗时分布，供 bench 命令输出统计结果
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	lowestLatency  = int64(time.Nanosecond)
	highestLatency = int64(time.Minute)
	significantFig = 3
)

// Summary 耗时统计
type Summary struct {
	Count int64         `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P90   time.Duration `json:"p90"`
	P99   time.Duration `json:"p99"`
}

// Format 以毫秒为单位返回统计结果
func (s Summary) Format() map[string]float64 {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return map[string]float64{
		"count": float64(s.Count),
		"min":   ms(s.Min),
		"max":   ms(s.Max),
		"avg":   ms(s.Mean),
		"med":   ms(s.P50),
		"p(90)": ms(s.P90),
		"p(99)": ms(s.P99),
	}
}

// LatencyRecorder 基于 HDR 直方图的耗时记录器，可并发使用
type LatencyRecorder struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// NewLatencyRecorder 创建耗时记录器，精度为纳秒，上限一分钟
func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{
		hist: hdrhistogram.New(lowestLatency, highestLatency, significantFig),
	}
}

// Record 记录一次耗时，超出范围的值截断到边界
func (r *LatencyRecorder) Record(d time.Duration) {
	v := int64(d)
	if v < 0 {
		v = 0
	}
	if v > highestLatency {
		v = highestLatency
	}
	r.mu.Lock()
	_ = r.hist.RecordValue(v)
	r.mu.Unlock()
}

// Count 已记录次数
func (r *LatencyRecorder) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hist.TotalCount()
}

// Summary 返回当前统计
func (r *LatencyRecorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hist.TotalCount() == 0 {
		return Summary{}
	}
	return Summary{
		Count: r.hist.TotalCount(),
		Min:   time.Duration(r.hist.Min()),
		Max:   time.Duration(r.hist.Max()),
		Mean:  time.Duration(r.hist.Mean()),
		P50:   time.Duration(r.hist.ValueAtQuantile(50)),
		P90:   time.Duration(r.hist.ValueAtQuantile(90)),
		P99:   time.Duration(r.hist.ValueAtQuantile(99)),
	}
}

// Reset 清空记录
func (r *LatencyRecorder) Reset() {
	r.mu.Lock()
	r.hist.Reset()
	r.mu.Unlock()
}
