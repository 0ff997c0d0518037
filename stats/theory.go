// Copyright 2026 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"math"
	"sort"

	"github.com/zintix-labs/revlab/spec"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 理論動差 **
// ============================================================

// Theory 回傳分布組態的理論平均與標準差。
//
// 連續分布直接走 gonum 的 distuv；uniform-int 是離散的，
// 用閉式解：mean = (a+b)/2，var = ((b−a+1)² − 1)/12。
func Theory(d spec.DistSetting) (mean, std float64) {
	switch d.Kind {
	case spec.DistUniformInt:
		width := float64(d.B) - float64(d.A) + 1
		return (float64(d.A) + float64(d.B)) / 2, math.Sqrt((width*width - 1) / 12)
	case spec.DistUniformReal:
		u := distuv.Uniform{Min: d.Low, Max: d.High}
		return u.Mean(), u.StdDev()
	case spec.DistNormal:
		n := distuv.Normal{Mu: d.Mean, Sigma: d.StdDev}
		return n.Mean(), n.StdDev()
	case spec.DistExponential:
		e := distuv.Exponential{Rate: d.Lambda}
		return e.Mean(), e.StdDev()
	default:
		return 0, 0
	}
}

// TheoryCDF 回傳分布組態在 x 的理論累積機率（分桶期望值用）。
func TheoryCDF(d spec.DistSetting, x float64) float64 {
	switch d.Kind {
	case spec.DistUniformInt:
		// 離散均勻：P(X ≤ x) = (floor(x) − a + 1) / (b − a + 1)
		lo, hi := float64(d.A), float64(d.B)
		k := math.Floor(x)
		if k < lo {
			return 0
		}
		if k >= hi {
			return 1
		}
		return (k - lo + 1) / (hi - lo + 1)
	case spec.DistUniformReal:
		return distuv.Uniform{Min: d.Low, Max: d.High}.CDF(x)
	case spec.DistNormal:
		return distuv.Normal{Mu: d.Mean, Sigma: d.StdDev}.CDF(x)
	case spec.DistExponential:
		return distuv.Exponential{Rate: d.Lambda}.CDF(x)
	default:
		return 0
	}
}

// ============================================================
// ** 樣本敘述統計 **
// ============================================================

// Described 一批樣本的敘述統計（重播分析用；大批量串流請走 recorder）。
type Described struct {
	N          int
	Mean       float64
	Std        float64
	Skew       float64
	ExKurtosis float64
	Median     float64
}

// Describe 以 gonum 計算一批樣本的動差。會就地排序輸入。
func Describe(samples []float64) Described {
	if len(samples) == 0 {
		return Described{}
	}
	mean, std := stat.MeanStdDev(samples, nil)
	d := Described{
		N:          len(samples),
		Mean:       mean,
		Std:        std,
		Skew:       stat.Skew(samples, nil),
		ExKurtosis: stat.ExKurtosis(samples, nil),
	}
	sort.Float64s(samples)
	d.Median = stat.Quantile(0.5, stat.Empirical, samples, nil)
	return d
}

// ============================================================
// ** 適合度檢定 **
// ============================================================

// ChiSquare 對分桶計數做卡方適合度檢定，回傳統計量與 p 值。
// expected 是各桶的理論機率；期望數過低（< 5）的桶會被併入鄰桶
// 的慣例這裡不做，呼叫端應給出合理的分桶。
func ChiSquare(counts []int, expected []float64) (chi2, pValue float64) {
	n := 0
	for _, c := range counts {
		n += c
	}
	if n == 0 || len(counts) != len(expected) {
		return 0, 1
	}
	dof := 0
	for i, c := range counts {
		e := expected[i] * float64(n)
		if e <= 0 {
			continue
		}
		diff := float64(c) - e
		chi2 += diff * diff / e
		dof++
	}
	if dof < 2 {
		return chi2, 1
	}
	dist := distuv.ChiSquared{K: float64(dof - 1)}
	return chi2, dist.Survival(chi2)
}
