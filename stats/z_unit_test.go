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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/revlab/spec"
	"github.com/zintix-labs/revlab/stats"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestTheoryMoments(t *testing.T) {
	cases := []struct {
		name      string
		d         spec.DistSetting
		mean, std float64
	}{
		{"dice", spec.DistSetting{Kind: spec.DistUniformInt, A: 1, B: 6}, 3.5, math.Sqrt(35.0 / 12.0)},
		{"unit", spec.DistSetting{Kind: spec.DistUniformReal, Low: 0, High: 1}, 0.5, 1 / math.Sqrt(12)},
		{"normal", spec.DistSetting{Kind: spec.DistNormal, Mean: 5, StdDev: 2}, 5, 2},
		{"exp", spec.DistSetting{Kind: spec.DistExponential, Lambda: 0.5}, 2, 2},
	}
	for _, c := range cases {
		mean, std := stats.Theory(c.d)
		if !near(mean, c.mean, 1e-12) || !near(std, c.std, 1e-12) {
			t.Fatalf("%s: Theory got (%.12f, %.12f) want (%.12f, %.12f)", c.name, mean, std, c.mean, c.std)
		}
	}
}

func TestTheoryCDFUniformInt(t *testing.T) {
	d := spec.DistSetting{Kind: spec.DistUniformInt, A: 1, B: 6}
	cases := []struct {
		x    float64
		want float64
	}{
		{0.5, 0},
		{1, 1.0 / 6.0},
		{3.9, 3.0 / 6.0},
		{6, 1},
		{10, 1},
	}
	for _, c := range cases {
		if got := stats.TheoryCDF(d, c.x); !near(got, c.want, 1e-12) {
			t.Fatalf("CDF(%.2f) got %.12f want %.12f", c.x, got, c.want)
		}
	}
}

func TestHistogramExpectedSumsToOne(t *testing.T) {
	dists := []spec.DistSetting{
		{Kind: spec.DistUniformInt, A: 1, B: 6},
		{Kind: spec.DistUniformReal, Low: -2, High: 3},
		{Kind: spec.DistNormal, Mean: 0, StdDev: 1},
		{Kind: spec.DistExponential, Lambda: 1.5},
	}
	for _, d := range dists {
		h := stats.NewHistogram(d)
		rep := h.Report()
		sum := 0.0
		for _, e := range rep.Expected {
			if e < 0 {
				t.Fatalf("%s: negative expected probability %g", d.Kind, e)
			}
			sum += e
		}
		if !near(sum, 1, 1e-9) {
			t.Fatalf("%s: expected probabilities sum %.12f want 1", d.Kind, sum)
		}
		if len(rep.Labels) != len(rep.Counts) || len(rep.Counts) != len(rep.Expected) {
			t.Fatalf("%s: report slice lengths mismatch", d.Kind)
		}
	}
}

func TestHistogramObserveMergeReport(t *testing.T) {
	d := spec.DistSetting{Kind: spec.DistUniformInt, A: 1, B: 6}
	a := stats.NewHistogram(d)
	b := stats.NewHistogram(d)

	// 下溢、每面各一、上溢
	a.Observe(0)
	for v := 1; v <= 6; v++ {
		a.Observe(float64(v))
	}
	b.Observe(7)
	a.Merge(b)

	rep := a.Report()
	total := 0
	for _, c := range rep.Counts {
		total += c
	}
	if total != 8 {
		t.Fatalf("merged counts total %d want 8", total)
	}
	if rep.Counts[0] != 1 {
		t.Fatalf("underflow count %d want 1", rep.Counts[0])
	}
	if rep.Counts[len(rep.Counts)-1] != 1 {
		t.Fatalf("overflow count %d want 1", rep.Counts[len(rep.Counts)-1])
	}
	fsum := 0.0
	for _, f := range rep.Freq {
		fsum += f
	}
	if !near(fsum, 1, 1e-12) {
		t.Fatalf("freq sum %.12f want 1", fsum)
	}
	if rep.PValue < 0 || rep.PValue > 1 {
		t.Fatalf("p value out of range: %g", rep.PValue)
	}
}

func TestChiSquarePerfectFit(t *testing.T) {
	// 計數恰為期望的整數倍 -> 卡方為 0、p 為 1
	expected := []float64{0.25, 0.25, 0.25, 0.25}
	counts := []int{100, 100, 100, 100}
	chi2, p := stats.ChiSquare(counts, expected)
	if !near(chi2, 0, 1e-12) {
		t.Fatalf("chi2 got %.12f want 0", chi2)
	}
	if !near(p, 1, 1e-9) {
		t.Fatalf("p got %.12f want 1", p)
	}

	// 明顯偏斜 -> p 應該極小
	_, pBad := stats.ChiSquare([]int{400, 0, 0, 0}, expected)
	if pBad > 1e-6 {
		t.Fatalf("skewed counts p got %g want ~0", pBad)
	}
}

func TestDescribe(t *testing.T) {
	d := stats.Describe([]float64{1, 2, 3, 4, 5})
	if d.N != 5 {
		t.Fatalf("N got %d want 5", d.N)
	}
	if !near(d.Mean, 3, 1e-12) {
		t.Fatalf("Mean got %.12f want 3", d.Mean)
	}
	if !near(d.Std, math.Sqrt(2.5), 1e-12) {
		t.Fatalf("Std got %.12f want %.12f", d.Std, math.Sqrt(2.5))
	}
	if !near(d.Median, 3, 1e-12) {
		t.Fatalf("Median got %.12f want 3", d.Median)
	}
}

func buildMomentReport(samples []float64) *stats.MomentReport {
	sum, sq := 0.0, 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		sum += v
		sq += v * v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return &stats.MomentReport{
		Summary: &stats.SummaryReport{
			Preset:     "test",
			Engine:     "pcg64",
			Dist:       "uniform-real",
			Rounds:     len(samples),
			TheoryMean: 0.5,
			TheoryStd:  1 / math.Sqrt(12),
		},
		Moment: &stats.MomentDetail{Sum: sum, SqSum: sq, Min: lo, Max: hi},
	}
}

func TestMomentReportCoreMetrics(t *testing.T) {
	samples := []float64{0.1, 0.3, 0.5, 0.7}
	rep := buildMomentReport(samples)
	rep.Done()

	wantMean := 0.4
	if !near(rep.Summary.Mean, wantMean, 1e-12) {
		t.Fatalf("Mean got %.12f want %.12f", rep.Summary.Mean, wantMean)
	}

	// n−1 修正標準差
	varSum := 0.0
	for _, v := range samples {
		varSum += (v - wantMean) * (v - wantMean)
	}
	wantStd := math.Sqrt(varSum / 3)
	if !near(rep.Summary.Std, wantStd, 1e-12) {
		t.Fatalf("Std got %.12f want %.12f", rep.Summary.Std, wantStd)
	}

	se := wantStd / 2 // sqrt(4)
	if !near(rep.Summary.MeanCI.Lo, wantMean-1.96*se, 1e-12) || !near(rep.Summary.MeanCI.Hi, wantMean+1.96*se, 1e-12) {
		t.Fatalf("CI got [%.12f,%.12f]", rep.Summary.MeanCI.Lo, rep.Summary.MeanCI.Hi)
	}

	theorySE := rep.Summary.TheoryStd / 2
	wantZ := (wantMean - 0.5) / theorySE
	if !near(rep.Summary.ZScore, wantZ, 1e-12) {
		t.Fatalf("Z got %.12f want %.12f", rep.Summary.ZScore, wantZ)
	}

	rep.Done() // idempotent
	if rep.Summary.Mean != wantMean {
		t.Fatalf("Mean changed after second Done")
	}
}

func TestReversePassRule(t *testing.T) {
	rep := buildMomentReport([]float64{0.5, 0.5})
	rep.Reverse = &stats.ReverseReport{Forward: 2, Backward: 2, Mismatches: 0, StateRestored: true}
	rep.Done()
	if !rep.Reverse.Pass {
		t.Fatalf("expected reverse pass")
	}

	rep2 := buildMomentReport([]float64{0.5, 0.5})
	rep2.Reverse = &stats.ReverseReport{Forward: 2, Backward: 2, Mismatches: 1, StateRestored: true}
	rep2.Done()
	if rep2.Reverse.Pass {
		t.Fatalf("mismatched values must not pass")
	}

	rep3 := buildMomentReport([]float64{0.5, 0.5})
	rep3.Reverse = &stats.ReverseReport{Forward: 2, Backward: 2, Mismatches: 0, StateRestored: false}
	rep3.Done()
	if rep3.Reverse.Pass {
		t.Fatalf("unrestored state must not pass")
	}
}

func TestRenderers(t *testing.T) {
	rep := buildMomentReport([]float64{0.2, 0.4, 0.6})

	var jbuf bytes.Buffer
	if err := rep.WriteWith(&jbuf, &stats.JsonMomentReportRender{}); err != nil {
		t.Fatalf("json render err: %v", err)
	}
	decoded := new(stats.MomentReport)
	if err := json.Unmarshal(jbuf.Bytes(), decoded); err != nil {
		t.Fatalf("json output not parseable: %v", err)
	}
	if decoded.Summary.Preset != "test" || decoded.Summary.Rounds != 3 {
		t.Fatalf("json round trip lost fields: %+v", decoded.Summary)
	}

	var ybuf bytes.Buffer
	if err := rep.WriteWith(&ybuf, &stats.YAMLMomentReportRender{}); err != nil {
		t.Fatalf("yaml render err: %v", err)
	}
	if !strings.Contains(ybuf.String(), "preset: test") {
		t.Fatalf("yaml output missing summary:\n%s", ybuf.String())
	}
}
