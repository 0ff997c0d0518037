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

package revlab

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/revlab/catalog"
	"github.com/zintix-labs/revlab/recorder"
	"github.com/zintix-labs/revlab/sdk/dist"
	"github.com/zintix-labs/revlab/sdk/engine"
)

func TestUniformRealRoundTripMillion(t *testing.T) {
	rng := NewUniformRealUnitRNG()

	v := rng.NextN(1_000_000)
	w := rng.PreviousN(1_000_000)

	for i := range v {
		if v[i] != w[i] {
			t.Fatalf("round trip mismatch at %d: %v vs %v", i, v[i], w[i])
		}
		if v[i] < 0 || v[i] >= 1 {
			t.Fatalf("sample %d out of [0,1): %v", i, v[i])
		}
	}
	if rng.Position() != 0 {
		t.Fatalf("position not restored: %d", rng.Position())
	}
}

func TestUniformIntBoundsAndRoundTripMillion(t *testing.T) {
	rng := NewUniformIntRNG(-10, 10)

	v := rng.NextN(1_000_000)
	for i, x := range v {
		if x < -10 || x > 10 {
			t.Fatalf("sample %d out of [-10,10]: %d", i, x)
		}
	}
	w := rng.PreviousN(1_000_000)
	for i := range v {
		if v[i] != w[i] {
			t.Fatalf("round trip mismatch at %d: %d vs %d", i, v[i], w[i])
		}
	}
	if rng.Position() != 0 {
		t.Fatalf("position not restored: %d", rng.Position())
	}
}

func TestRNGDiscardEquivalenceMillion(t *testing.T) {
	a := New[float64](engine.NewPCG64Seeded(42), dist.NewUniformRealUnit())
	b := New[float64](engine.NewPCG64Seeded(42), dist.NewUniformRealUnit())

	a.Discard(1_000_000)
	for i := 0; i < 1_000_000; i++ {
		b.Next()
	}

	if !a.Equal(b) {
		t.Fatal("discard diverged from repeated next")
	}
	if a.Next() != b.Next() {
		t.Fatal("next value diverged after discard")
	}
}

func TestMersenneReseedEqualityMillion(t *testing.T) {
	a := engine.NewMersenne()
	a.Discard(1_000_000)

	seed := engine.RandomSeed()
	a.Seed(seed)
	b := engine.NewMersenne()
	b.Seed(seed)

	if !a.Equal(b) {
		t.Fatal("reseeded engines differ")
	}
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("reseeded engines diverged at step %d", i)
		}
	}
}

func TestRNGEncodeDecodeAfterMillion(t *testing.T) {
	a := NewNormalRNG(5, 2)
	a.Discard(1_000_000)

	b := NewNormalRNG(5, 2)
	if err := b.Decode(a.Encode()); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !a.Equal(b) {
		t.Fatal("decoded rng differs from source")
	}
	if a.Next() != b.Next() {
		t.Fatal("decoded rng diverged on next sample")
	}
}

func TestRNGDecodeMalformed(t *testing.T) {
	r := NewExponentialRNG(1)
	snap := r.Encode()

	for _, bad := range []string{
		"",
		"pcg64",
		snap + " trailing",
		"mersenne 1 2 3",
	} {
		if err := r.Decode(bad); err == nil {
			t.Fatalf("decode accepted malformed input %q", bad)
		}
	}
}

// PCG-64 預設乘數、預設增量、種子 42 的前四筆輸出（跨實作迴歸基準）。
var pcg64Seed42 = []uint64{
	2915081201720324186,
	13533757442135995717,
	13172715927431628928,
	13789878565430171748,
}

func TestWordStreamFixture(t *testing.T) {
	s := NewWordStream(engine.NewPCG64Seeded(42))
	for i, want := range pcg64Seed42 {
		if got := s.Word(); got != uint32(want) {
			t.Fatalf("word %d: got %d want %d", i, got, uint32(want))
		}
	}
	if s.Produced() != uint64(len(pcg64Seed42)) {
		t.Fatalf("produced count: %d", s.Produced())
	}
}

func TestWordStreamRead(t *testing.T) {
	a := NewWordStream(engine.NewPCG64Seeded(7))
	b := NewWordStream(engine.NewPCG64Seeded(7))

	buf := make([]byte, 4*256+2) // 尾端殘餘位元組也要吃掉一個完整字組
	n, err := a.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	for i := 0; i < 256; i++ {
		got := binary.LittleEndian.Uint32(buf[4*i:])
		if want := b.Word(); got != want {
			t.Fatalf("word %d: got %d want %d", i, got, want)
		}
	}
	var tail [4]byte
	binary.LittleEndian.PutUint32(tail[:], b.Word())
	if buf[4*256] != tail[0] || buf[4*256+1] != tail[1] {
		t.Fatal("tail bytes do not come from the next word")
	}
}

// ============================================================
// ** 組裝層 **
// ============================================================

func testConfigFS() fstest.MapFS {
	return fstest.MapFS{
		"unit.yaml": &fstest.MapFile{Data: []byte(
			"name: unit\nengine: pcg64\nseed: 42\ndist:\n  kind: uniform-real\n")},
		"dice.yaml": &fstest.MapFile{Data: []byte(
			"name: dice\nengine: pcg32\nseed: 7\ndist:\n  kind: uniform-int\n  a: 1\n  b: 6\n")},
		"gauss.json": &fstest.MapFile{Data: []byte(
			`{"name":"gauss","engine":"mersenne","seed":5489,"dist":{"kind":"normal","mean":5,"stddev":2}}`)},
		"decay.yaml": &fstest.MapFile{Data: []byte(
			"name: decay\nengine: pcg64cm\nseed: 99\nstream: 3\ndist:\n  kind: exponential\n  lambda: 0.5\n")},
	}
}

func testLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := NewLab(Configs(testConfigFS()),
		catalog.Entry{Name: "unit", ConfigName: "unit.yaml"},
		catalog.Entry{Name: "dice", ConfigName: "dice.yaml"},
		catalog.Entry{Name: "gauss", ConfigName: "gauss.json"},
		catalog.Entry{Name: "decay", ConfigName: "decay.yaml"},
	)
	if err != nil {
		t.Fatalf("lab build failed: %v", err)
	}
	return lab
}

func TestLabBuild(t *testing.T) {
	lab := testLab(t)

	if !lab.Catalog().IsFrozen() {
		t.Fatal("catalog not frozen after build")
	}
	sum := lab.Summaries()
	if len(sum) != 4 {
		t.Fatalf("summaries: %d", len(sum))
	}
	for _, s := range sum {
		if !s.Seeded {
			t.Fatalf("preset %q should report fixed seed", s.Name)
		}
	}

	if _, err := lab.NewFloatRNG("dice"); err == nil {
		t.Fatal("dice built as float rng")
	}
	if _, err := lab.NewIntRNG("unit"); err == nil {
		t.Fatal("unit built as int rng")
	}
	if _, _, err := lab.NewEngine("missing"); err == nil {
		t.Fatal("missing preset built an engine")
	}
}

func TestLabSeededPresetDeterminism(t *testing.T) {
	lab := testLab(t)

	a, err := lab.NewFloatRNG("gauss")
	if err != nil {
		t.Fatalf("gauss rng: %v", err)
	}
	b, err := lab.NewFloatRNG("gauss")
	if err != nil {
		t.Fatalf("gauss rng: %v", err)
	}
	for i := 0; i < 1000; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("seeded preset diverged at %d", i)
		}
	}
}

func TestSimulatorVerify(t *testing.T) {
	lab := testLab(t)

	for _, preset := range []string{"unit", "dice", "gauss", "decay"} {
		sim, err := lab.NewSimulatorWithSeed(preset, 12345)
		if err != nil {
			t.Fatalf("%s: simulator: %v", preset, err)
		}
		report, _, err := sim.Verify(50_000, false)
		if err != nil {
			t.Fatalf("%s: verify: %v", preset, err)
		}
		if report.Reverse == nil || !report.Reverse.Pass {
			t.Fatalf("%s: round trip failed: %+v", preset, report.Reverse)
		}
		if report.Summary.Rounds != 50_000 {
			t.Fatalf("%s: rounds: %d", preset, report.Summary.Rounds)
		}
	}
}

func TestSimulatorVerifyMP(t *testing.T) {
	lab := testLab(t)

	sim, err := lab.NewSimulatorWithSeed("unit", 777)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	report, _, err := sim.VerifyMP(25_000, 4, false)
	if err != nil {
		t.Fatalf("verify mp: %v", err)
	}
	if !report.Reverse.Pass {
		t.Fatalf("round trip failed: %+v", report.Reverse)
	}
	if report.Summary.Rounds != 100_000 {
		t.Fatalf("merged rounds: %d", report.Summary.Rounds)
	}
	// uniform [0,1)：樣本平均該落在理論平均附近
	if report.Summary.ZScore > 5 || report.Summary.ZScore < -5 {
		t.Fatalf("mean z-score implausible: %v", report.Summary.ZScore)
	}
}

func TestSimulatorRecordReplay(t *testing.T) {
	lab := testLab(t)

	sim, err := lab.NewSimulatorWithSeed("unit", 2024)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}

	var buf bytes.Buffer
	report, _, err := sim.Record(&buf, 10_000, false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if report.Summary.Rounds != 10_000 {
		t.Fatalf("rounds: %d", report.Summary.Rounds)
	}

	run, err := recorder.OpenRunReader(&buf)
	if err != nil {
		t.Fatalf("open replay: %v", err)
	}
	defer run.Close()
	if run.Preset() != "unit" {
		t.Fatalf("preset: %q", run.Preset())
	}

	samples, err := run.ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(samples) != 10_000 {
		t.Fatalf("samples: %d", len(samples))
	}

	// 以快照重建 RNG 並重播：值必須逐筆一致
	rng, err := lab.NewFloatRNG("unit")
	if err != nil {
		t.Fatalf("rng: %v", err)
	}
	if err := rng.Decode(run.EngineSnapshot()); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	for i, want := range samples {
		if got := rng.Next(); got != want {
			t.Fatalf("replay mismatch at %d: %v vs %v", i, got, want)
		}
	}
}

// failingWriter 在第一次寫入後開始回報錯誤，模擬寫滿的磁碟。
type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestSimulatorRecordWriteFailure(t *testing.T) {
	lab := testLab(t)

	sim, err := lab.NewSimulatorWithSeed("unit", 2024)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}

	// 樣本數要多到逼出壓縮器的內部 flush，錯誤才會浮上來。
	fw := &failingWriter{}
	if _, _, err := sim.Record(fw, 200_000, false); err == nil {
		t.Fatal("record into a failing writer must report an error")
	}

	// 同一個模擬器在失敗後要能重新執行
	var buf bytes.Buffer
	if _, _, err := sim.Record(&buf, 1_000, false); err != nil {
		t.Fatalf("record after failure: %v", err)
	}
}

func TestSimulatorSimMoments(t *testing.T) {
	lab := testLab(t)

	sim, err := lab.NewSimulatorWithSeed("gauss", 9)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	report, _, err := sim.SimMP(50_000, 4, false)
	if err != nil {
		t.Fatalf("sim mp: %v", err)
	}
	if report.Summary.TheoryMean != 5 || report.Summary.TheoryStd != 2 {
		t.Fatalf("theory moments: %v %v", report.Summary.TheoryMean, report.Summary.TheoryStd)
	}
	if report.Summary.ZScore > 5 || report.Summary.ZScore < -5 {
		t.Fatalf("mean z-score implausible: %v", report.Summary.ZScore)
	}
	if report.Hist == nil || report.Hist.PValue <= 0 {
		t.Fatalf("histogram fit missing: %+v", report.Hist)
	}
}
