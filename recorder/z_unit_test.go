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

package recorder_test

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/revlab/recorder"
	"github.com/zintix-labs/revlab/spec"
)

func diceSetting() *spec.RNGSetting {
	return &spec.RNGSetting{
		Name:   "dice",
		Engine: spec.EnginePCG32,
		Dist:   spec.DistSetting{Kind: spec.DistUniformInt, A: 1, B: 6},
	}
}

func TestSampleRecorderAccumulate(t *testing.T) {
	rec, err := recorder.NewSampleRecorder(diceSetting())
	if err != nil {
		t.Fatalf("new recorder err: %v", err)
	}
	for _, v := range []float64{1, 6, 3, 3} {
		rec.Record(v)
	}

	if rec.Basic.Rounds != 4 {
		t.Fatalf("rounds got %d want 4", rec.Basic.Rounds)
	}
	if rec.Basic.Sum != 13 || rec.Basic.SqSum != 1+36+9+9 {
		t.Fatalf("sum/sqsum got %.1f/%.1f", rec.Basic.Sum, rec.Basic.SqSum)
	}
	if rec.Basic.Min != 1 || rec.Basic.Max != 6 {
		t.Fatalf("min/max got %.1f/%.1f", rec.Basic.Min, rec.Basic.Max)
	}

	rep := rec.Done()
	rep.Done()
	if rep.Summary.Rounds != 4 {
		t.Fatalf("report rounds got %d want 4", rep.Summary.Rounds)
	}
	if math.Abs(rep.Summary.Mean-3.25) > 1e-12 {
		t.Fatalf("mean got %.12f want 3.25", rep.Summary.Mean)
	}
	if math.Abs(rep.Summary.TheoryMean-3.5) > 1e-12 {
		t.Fatalf("theory mean got %.12f want 3.5", rep.Summary.TheoryMean)
	}
	if rep.Hist == nil {
		t.Fatalf("expected histogram report")
	}
}

func TestSampleRecorderEmptyDone(t *testing.T) {
	rec, err := recorder.NewSampleRecorder(diceSetting())
	if err != nil {
		t.Fatalf("new recorder err: %v", err)
	}
	rep := rec.Done()
	rep.Done()
	// 空紀錄：min/max 不該洩漏初始的 ±Inf
	if rep.Moment.Min != 0 || rep.Moment.Max != 0 {
		t.Fatalf("empty min/max got %.1f/%.1f want 0/0", rep.Moment.Min, rep.Moment.Max)
	}
	if rep.Summary.Mean != 0 {
		t.Fatalf("empty mean got %.12f want 0", rep.Summary.Mean)
	}
}

func TestMergeSampleRecorder(t *testing.T) {
	a, _ := recorder.NewSampleRecorder(diceSetting())
	b, _ := recorder.NewSampleRecorder(diceSetting())
	a.Record(1)
	a.Record(2)
	b.Record(5)
	b.Record(6)

	m, err := recorder.MergeSampleRecorder([]*recorder.SampleRecorder{a, b})
	if err != nil {
		t.Fatalf("merge err: %v", err)
	}
	if m.Basic.Rounds != 4 || m.Basic.Sum != 14 {
		t.Fatalf("merged rounds/sum got %d/%.1f want 4/14", m.Basic.Rounds, m.Basic.Sum)
	}
	if m.Basic.Min != 1 || m.Basic.Max != 6 {
		t.Fatalf("merged min/max got %.1f/%.1f", m.Basic.Min, m.Basic.Max)
	}

	// 不同 preset 不能合併
	other := diceSetting()
	other.Name = "lotto"
	c, _ := recorder.NewSampleRecorder(other)
	if _, err := recorder.MergeSampleRecorder([]*recorder.SampleRecorder{a, c}); err == nil {
		t.Fatalf("expected merge rejection for different presets")
	}
}

func TestRunLogRoundTrip(t *testing.T) {
	samples := []float64{0.125, -3.5, 0, math.Pi, 1e-300}
	snapshot := "pcg64|7|11|42"

	var buf bytes.Buffer
	w, err := recorder.NewRunWriter(&buf, "unit", snapshot)
	if err != nil {
		t.Fatalf("new writer err: %v", err)
	}
	for _, v := range samples {
		if err := w.WriteSample(v); err != nil {
			t.Fatalf("write sample err: %v", err)
		}
	}
	if w.Count() != len(samples) {
		t.Fatalf("count got %d want %d", w.Count(), len(samples))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close err: %v", err)
	}

	r, err := recorder.OpenRunReader(&buf)
	if err != nil {
		t.Fatalf("open reader err: %v", err)
	}
	defer r.Close()

	if r.Preset() != "unit" {
		t.Fatalf("preset got %q want unit", r.Preset())
	}
	if r.EngineSnapshot() != snapshot {
		t.Fatalf("snapshot got %q want %q", r.EngineSnapshot(), snapshot)
	}
	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read all err: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("sample count got %d want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d got %v want %v", i, got[i], samples[i])
		}
	}
	if _, err := r.ReadSample(); err != io.EOF {
		t.Fatalf("expected io.EOF at end, got %v", err)
	}
}

func TestRunWriterRejectsBadPreset(t *testing.T) {
	var buf bytes.Buffer
	if _, err := recorder.NewRunWriter(&buf, "", "snap"); err == nil {
		t.Fatalf("expected rejection for empty preset")
	}
	if _, err := recorder.NewRunWriter(&buf, "two words", "snap"); err == nil {
		t.Fatalf("expected rejection for preset with space")
	}
}

func TestOpenRunReaderMalformed(t *testing.T) {
	// 非 zstd 內容
	if _, err := recorder.OpenRunReader(bytes.NewReader([]byte("not a zstd stream"))); err == nil {
		t.Fatalf("expected error for non-zstd input")
	}

	// 壓縮合法但標頭不是 run log
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("new zstd writer err: %v", err)
	}
	io.WriteString(zw, "something else entirely\n")
	zw.Close()
	if _, err := recorder.OpenRunReader(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatalf("expected error for malformed header")
	}
}
