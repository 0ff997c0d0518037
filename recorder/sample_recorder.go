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

package recorder

import (
	"math"

	"github.com/zintix-labs/revlab/errs"
	"github.com/zintix-labs/revlab/spec"
	"github.com/zintix-labs/revlab/stats"
)

// SampleRecorder 取樣紀錄員
//
// SampleRecorder 負責累積取樣結果，並透過 Done 輸出統計報表。
// 紀錄過程只做加法與分桶計數，換算留到 Done 一次完成。
type SampleRecorder struct {
	Preset string
	Engine spec.EngineKind
	Dist   spec.DistSetting
	Basic  *BasicRecord
	Hist   *stats.Histogram
}

// BasicRecord 基本取樣資料紀錄
type BasicRecord struct {
	Sum    float64
	SqSum  float64 // 平方和
	Min    float64
	Max    float64
	Rounds int
}

func NewSampleRecorder(rs *spec.RNGSetting) (*SampleRecorder, error) {
	s := new(SampleRecorder)
	if rs == nil {
		return s, errs.NewFatal("rng setting required")
	}

	s.Preset = rs.Name
	s.Engine = rs.Engine
	s.Dist = rs.Dist
	s.Basic = &BasicRecord{Min: math.Inf(1), Max: math.Inf(-1)}
	s.Hist = stats.NewHistogram(rs.Dist)

	return s, nil
}

func MergeSampleRecorder(r []*SampleRecorder) (*SampleRecorder, error) {
	r0 := r[0]
	s, err := NewSampleRecorder(&spec.RNGSetting{
		Name:   r0.Preset,
		Engine: r0.Engine,
		Dist:   r0.Dist,
	})
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.Preset != r0.Preset {
			return s, errs.NewFatal("merge sample record err : different preset")
		}
		if v.Engine != r0.Engine {
			return s, errs.NewFatal("merge sample record err : different engine")
		}
		if v.Dist != r0.Dist {
			return s, errs.NewFatal("merge sample record err : different dist")
		}
		s.Basic.Sum += v.Basic.Sum
		s.Basic.SqSum += v.Basic.SqSum
		s.Basic.Rounds += v.Basic.Rounds
		if v.Basic.Min < s.Basic.Min {
			s.Basic.Min = v.Basic.Min
		}
		if v.Basic.Max > s.Basic.Max {
			s.Basic.Max = v.Basic.Max
		}

		// 整合Hist
		s.Hist.Merge(v.Hist)
	}
	return s, nil
}

// Record 以單一樣本更新累積統計。
func (s *SampleRecorder) Record(v float64) {
	b := s.Basic
	b.Sum += v
	b.SqSum += v * v
	if v < b.Min {
		b.Min = v
	}
	if v > b.Max {
		b.Max = v
	}
	b.Rounds++
	s.Hist.Observe(v)
}

func (s *SampleRecorder) Done() *stats.MomentReport {
	theoMean, theoStd := stats.Theory(s.Dist)

	mn, mx := s.Basic.Min, s.Basic.Max
	if s.Basic.Rounds == 0 {
		mn, mx = 0, 0
	}

	report := &stats.MomentReport{
		Summary: &stats.SummaryReport{
			Preset:     s.Preset,
			Engine:     string(s.Engine),
			Dist:       string(s.Dist.Kind),
			Rounds:     s.Basic.Rounds,
			TheoryMean: theoMean,
			TheoryStd:  theoStd,
		},
		Moment: &stats.MomentDetail{
			Sum:   s.Basic.Sum,
			SqSum: s.Basic.SqSum,
			Min:   mn,
			Max:   mx,
		},
		Hist: s.Hist.Report(),
	}
	return report
}
