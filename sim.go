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
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/revlab/errs"
	"github.com/zintix-labs/revlab/recorder"
	"github.com/zintix-labs/revlab/sdk/dist"
	"github.com/zintix-labs/revlab/spec"
	"github.com/zintix-labs/revlab/stats"
)

const capPrepare int = 100

// Simulator 用於大量取樣與往返驗證，可建立多個 RNG 實例並行累積統計。
type Simulator struct {
	Preset    string           // 預設名稱
	rs        *spec.RNGSetting // 方便重用建立 recorder
	initSeed  int64            // 初始下的種子
	seedmaker *seedMaker       // 種子生成器
	wBuf      []simWorker      // 併發執行 RNG 實例
	rBuf      []*recorder.SampleRecorder
}

// NewSimulator 依預設名稱建立模擬器，初始種子取自系統亂數來源。
func (l *Lab) NewSimulator(name string) (*Simulator, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, err
	}
	return l.NewSimulatorWithSeed(name, seed.Int64())
}

// NewSimulatorWithSeed 以固定初始種子建立模擬器（結果可重現）。
func (l *Lab) NewSimulatorWithSeed(name string, seed int64) (*Simulator, error) {
	rs, err := l.cat.SettingByName(name)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSetting(name, rs, seed)
}

// NewSimulatorByJSON 以內嵌 JSON 組態建立模擬器（不經過目錄）。
func (l *Lab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	rs, err := spec.GetRNGSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSetting(rs.Name, rs, seed)
}

// NewSimulatorByYAML 以內嵌 YAML 組態建立模擬器（不經過目錄）。
func (l *Lab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	rs, err := spec.GetRNGSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSetting(rs.Name, rs, seed)
}

func newSimulatorWithSetting(name string, rs *spec.RNGSetting, seed int64) (*Simulator, error) {
	s := &Simulator{
		Preset:    name,
		rs:        rs,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		wBuf:      make([]simWorker, 1, capPrepare),
		rBuf:      make([]*recorder.SampleRecorder, 0, capPrepare),
	}
	w, err := newSimWorker(rs, uint64(s.initSeed))
	if err != nil {
		return nil, err
	}
	s.wBuf[0] = w
	return s, nil
}

// Sim 單線模擬器：以一個 RNG 實例連續取指定筆數並回傳統計結果與用時
func (s *Simulator) Sim(rounds int, showpb bool) (*stats.MomentReport, time.Duration, error) {
	defer s.reset()
	if rounds < 1 {
		return nil, 0, errs.NewWarn("rounds must > 0")
	}
	if err := s.prepare(1); err != nil {
		return nil, 0, err
	}
	r := s.rBuf[0]
	w := s.wBuf[0]

	bar := pb.StartNew(rounds)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	w.forward(rounds, r, bar)
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// SimMP 平行執行多個 RNG 實例，總計 rounds*mp 筆樣本，合併統計結果後回傳統計結果與用時
func (s *Simulator) SimMP(rounds int, mp int, showpb bool) (*stats.MomentReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("rounds must > 0")
	}
	if err := s.prepare(mp); err != nil {
		return nil, 0, err
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			s.wBuf[i].forward(rounds, s.rBuf[i], bar)
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergeSampleRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Done()

	return result, used, nil
}

// Verify 單線往返驗證：取 rounds 筆再全部倒回，比對值序列與引擎狀態。
func (s *Simulator) Verify(rounds int, showpb bool) (*stats.MomentReport, time.Duration, error) {
	defer s.reset()
	if rounds < 1 {
		return nil, 0, errs.NewWarn("rounds must > 0")
	}
	if err := s.prepare(1); err != nil {
		return nil, 0, err
	}

	bar := pb.StartNew(rounds)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	rev := s.wBuf[0].roundTrip(rounds, s.rBuf[0], bar)
	used := time.Since(bar.StartTime())
	bar.Finish()

	result := s.rBuf[0].Done()
	result.Reverse = rev
	result.Done()
	return result, used, nil
}

// VerifyMP 平行往返驗證：每個實例各自取 rounds 筆並倒回，合併統計與驗證結果。
func (s *Simulator) VerifyMP(rounds int, mp int, showpb bool) (*stats.MomentReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("rounds must > 0")
	}
	if err := s.prepare(mp); err != nil {
		return nil, 0, err
	}

	revs := make([]*stats.ReverseReport, mp)
	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			revs[i] = s.wBuf[i].roundTrip(rounds, s.rBuf[i], bar)
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergeSampleRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Reverse = mergeReverse(revs)
	result.Done()
	return result, used, nil
}

// Record 取 rounds 筆樣本並寫入可重播紀錄，回傳統計結果。
func (s *Simulator) Record(w io.Writer, rounds int, showpb bool) (*stats.MomentReport, time.Duration, error) {
	defer s.reset()
	if rounds < 1 {
		return nil, 0, errs.NewWarn("rounds must > 0")
	}
	if err := s.prepare(1); err != nil {
		return nil, 0, err
	}

	rw, err := recorder.NewRunWriter(w, s.Preset, s.wBuf[0].snapshot())
	if err != nil {
		return nil, 0, err
	}

	bar := pb.StartNew(rounds)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	if err := s.wBuf[0].record(rounds, s.rBuf[0], rw, bar); err != nil {
		_ = rw.Close() // 出錯也要關掉壓縮器，別讓 encoder 留在半空中
		return nil, 0, err
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err := rw.Close(); err != nil {
		return nil, 0, err
	}

	result := s.rBuf[0].Done()
	result.Done()
	return result, used, nil
}

func (s *Simulator) prepare(mp int) error {
	for len(s.wBuf) < mp {
		w, err := newSimWorker(s.rs, uint64(s.seedmaker.next()))
		if err != nil {
			return err
		}
		s.wBuf = append(s.wBuf, w)
	}
	for len(s.rBuf) < mp {
		r, err := recorder.NewSampleRecorder(s.rs)
		if err != nil {
			return err
		}
		s.rBuf = append(s.rBuf, r)
	}
	return nil
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

func mergeReverse(revs []*stats.ReverseReport) *stats.ReverseReport {
	out := &stats.ReverseReport{StateRestored: true}
	for _, r := range revs {
		out.Forward += r.Forward
		out.Backward += r.Backward
		out.Mismatches += r.Mismatches
		out.StateRestored = out.StateRestored && r.StateRestored
	}
	return out
}

// ============================================================
// ** worker **
// ============================================================

// simWorker 把不同樣本型別的 RNG 收斂成統一的模擬介面。
type simWorker interface {
	forward(n int, rec *recorder.SampleRecorder, bar *pb.ProgressBar)
	roundTrip(n int, rec *recorder.SampleRecorder, bar *pb.ProgressBar) *stats.ReverseReport
	record(n int, rec *recorder.SampleRecorder, rw *recorder.RunWriter, bar *pb.ProgressBar) error
	snapshot() string
}

func newSimWorker(rs *spec.RNGSetting, seed uint64) (simWorker, error) {
	// 每個 worker 用各自的種子，但沿用預設的 stream 設定
	own := *rs
	own.Seed = &seed
	e, err := BuildEngine(&own)
	if err != nil {
		return nil, err
	}
	if own.IsInt() {
		rng := New[int64](e, dist.NewUniformInt(own.Dist.A, own.Dist.B))
		return &worker[int64]{rng: rng}, nil
	}
	rng, err := buildFloatRNG(e, &own)
	if err != nil {
		return nil, err
	}
	return &worker[float64]{rng: rng}, nil
}

type worker[T dist.Number] struct {
	rng *ReversibleRNG[T]
}

func (w *worker[T]) forward(n int, rec *recorder.SampleRecorder, bar *pb.ProgressBar) {
	for i := 0; i < n; i++ {
		rec.Record(float64(w.rng.Next()))
		bar.Increment()
	}
}

func (w *worker[T]) roundTrip(n int, rec *recorder.SampleRecorder, bar *pb.ProgressBar) *stats.ReverseReport {
	before := w.rng.Encode()
	fwd := make([]T, n)
	for i := range fwd {
		fwd[i] = w.rng.Next()
		rec.Record(float64(fwd[i]))
		bar.Increment()
	}

	rev := &stats.ReverseReport{Forward: n, Backward: n}
	back := w.rng.PreviousN(n)
	for i := range fwd {
		if back[i] != fwd[i] {
			rev.Mismatches++
		}
	}
	rev.StateRestored = w.rng.Encode() == before
	return rev
}

func (w *worker[T]) record(n int, rec *recorder.SampleRecorder, rw *recorder.RunWriter, bar *pb.ProgressBar) error {
	for i := 0; i < n; i++ {
		v := float64(w.rng.Next())
		rec.Record(v)
		if err := rw.WriteSample(v); err != nil {
			return err
		}
		bar.Increment()
	}
	return nil
}

func (w *worker[T]) snapshot() string { return w.rng.Encode() }

// ============================================================
// ** seed maker **
// ============================================================

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 SimMP / VerifyMP）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
