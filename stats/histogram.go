package stats

import (
	"fmt"
	"math"

	"github.com/zintix-labs/revlab/spec"
)

const histBins int = 20

// Histogram
//
// 用來快速定位樣本值 -> 計數位置 O(1)
//
// 分桶佈局固定為：[下溢) + histBins 個等寬桶 + [上溢)。
// 連續分布以理論平均 ± 4 個標準差當作觀測範圍；uniform-int
// 直接以 [a, b] 為範圍。
type Histogram struct {
	lo, hi   float64
	binWidth float64
	labels   []string
	counts   []int
	expected []float64
}

// NewHistogram 依分布組態建立分桶器；期望機率由理論 CDF 算出。
func NewHistogram(d spec.DistSetting) *Histogram {
	var lo, hi float64
	switch d.Kind {
	case spec.DistUniformInt:
		lo, hi = float64(d.A), float64(d.B)+1
	case spec.DistUniformReal:
		lo, hi = d.Low, d.High
	default:
		mean, std := Theory(d)
		lo, hi = mean-4*std, mean+4*std
		if d.Kind == spec.DistExponential {
			lo = 0
		}
	}

	h := &Histogram{
		lo:       lo,
		hi:       hi,
		binWidth: (hi - lo) / float64(histBins),
		labels:   make([]string, histBins+2),
		counts:   make([]int, histBins+2),
		expected: make([]float64, histBins+2),
	}

	h.labels[0] = fmt.Sprintf("(-inf,%.3g)", lo)
	h.expected[0] = TheoryCDF(d, nextBelow(lo))
	for i := 0; i < histBins; i++ {
		l := lo + float64(i)*h.binWidth
		r := l + h.binWidth
		h.labels[i+1] = fmt.Sprintf("[%.3g,%.3g)", l, r)
		h.expected[i+1] = TheoryCDF(d, nextBelow(r)) - TheoryCDF(d, nextBelow(l))
	}
	h.labels[histBins+1] = fmt.Sprintf("[%.3g,+inf)", hi)
	h.expected[histBins+1] = 1 - TheoryCDF(d, nextBelow(hi))

	return h
}

// Index 回傳樣本值落入的桶索引。
func (h *Histogram) Index(v float64) int {
	if v < h.lo {
		return 0
	}
	if v >= h.hi {
		return histBins + 1
	}
	i := int((v - h.lo) / h.binWidth)
	if i >= histBins { // 浮點邊界
		i = histBins - 1
	}
	return i + 1
}

// Observe 計入一個樣本。
func (h *Histogram) Observe(v float64) {
	h.counts[h.Index(v)]++
}

// Merge 併入另一個相同佈局的分桶器的計數。
func (h *Histogram) Merge(other *Histogram) {
	for i, c := range other.counts {
		h.counts[i] += c
	}
}

// Report 產出分桶報表（含卡方適合度檢定）。
func (h *Histogram) Report() *HistReport {
	n := 0
	for _, c := range h.counts {
		n += c
	}
	freq := make([]float64, len(h.counts))
	if n > 0 {
		for i, c := range h.counts {
			freq[i] = float64(c) / float64(n)
		}
	}
	chi2, p := ChiSquare(h.counts, h.expected)
	return &HistReport{
		Labels:    append([]string(nil), h.labels...),
		Counts:    append([]int(nil), h.counts...),
		Freq:      freq,
		Expected:  append([]float64(nil), h.expected...),
		ChiSquare: chi2,
		PValue:    p,
	}
}

// nextBelow 把右開區間的邊界往下挪一個 ULP，讓離散 CDF 的
// P(X ≤ x) 語意對得上 P(X < x)。
func nextBelow(x float64) float64 {
	return math.Nextafter(x, math.Inf(-1))
}
