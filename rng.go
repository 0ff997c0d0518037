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
	"strings"

	"github.com/zintix-labs/revlab/corefmt"
	"github.com/zintix-labs/revlab/errs"
	"github.com/zintix-labs/revlab/sdk/dist"
	"github.com/zintix-labs/revlab/sdk/engine"
)

// ReversibleRNG 把可逆引擎與分布組成可逆的取樣器，並追蹤有號位置：
// Next 使位置 +1，Previous 使位置 −1。
//
// 往返律（整個系統的核心正確性）：對任何初始狀態與 N ≥ 0，
// NextN(N) 之後呼叫 PreviousN(N) 回傳同一批值（PreviousN 已排成
// 正向順序），且位置與引擎狀態回到原點。
//
// 單一實例不可併發使用。
type ReversibleRNG[T dist.Number] struct {
	eng  engine.Engine
	dist dist.Sampler[T]
	pos  int64
}

// New 以備妥的引擎與分布建立 RNG。引擎的播種狀態由呼叫端決定，
// 之後由本 RNG 獨占持有。
func New[T dist.Number](e engine.Engine, d dist.Sampler[T]) *ReversibleRNG[T] {
	if e == nil || d == nil {
		panic("ReversibleRNG: engine and distribution are required")
	}
	return &ReversibleRNG[T]{eng: e, dist: d}
}

// 便利建構器：預設引擎為 PCG64，種子取自系統亂數來源。

// NewUniformRealRNG 建立 [a, b) 上的均勻實數 RNG。
func NewUniformRealRNG(a, b float64) *ReversibleRNG[float64] {
	return New[float64](engine.NewPCG64Seeded(engine.RandomSeed()), dist.NewUniformReal(a, b))
}

// NewUniformRealUnitRNG 建立 [0, 1) 上的均勻實數 RNG。
func NewUniformRealUnitRNG() *ReversibleRNG[float64] {
	return NewUniformRealRNG(0, 1)
}

// NewUniformIntRNG 建立 [a, b] 上的均勻整數 RNG。
func NewUniformIntRNG(a, b int64) *ReversibleRNG[int64] {
	return New[int64](engine.NewPCG64Seeded(engine.RandomSeed()), dist.NewUniformInt(a, b))
}

// NewNormalRNG 建立常態分布 RNG。
func NewNormalRNG(mean, stddev float64) *ReversibleRNG[float64] {
	return New[float64](engine.NewPCG64Seeded(engine.RandomSeed()), dist.NewNormal(mean, stddev))
}

// NewExponentialRNG 建立指數分布 RNG。
func NewExponentialRNG(lambda float64) *ReversibleRNG[float64] {
	return New[float64](engine.NewPCG64Seeded(engine.RandomSeed()), dist.NewExponential(lambda))
}

// Next 回傳下一個樣本。
func (r *ReversibleRNG[T]) Next() T {
	r.pos++
	return r.dist.Sample(engine.Forward{E: r.eng})
}

// Previous 回傳上一個樣本。反向轉接器只在本次取樣期間借用引擎。
func (r *ReversibleRNG[T]) Previous() T {
	r.pos--
	return r.dist.Sample(engine.Reversed{E: r.eng})
}

// NextN 回傳接下來 n 個樣本（正向順序）。
func (r *ReversibleRNG[T]) NextN(n int) []T {
	vals := make([]T, n)
	for i := range vals {
		vals[i] = r.Next()
	}
	return vals
}

// PreviousN 回傳之前的 n 個樣本，排列成與對應的 NextN 相同的
// 正向順序：第 k 次 Previous 的結果放在索引 n−1−k。
func (r *ReversibleRNG[T]) PreviousN(n int) []T {
	vals := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		vals[i] = r.Previous()
	}
	return vals
}

// FillNext 以接下來的樣本填滿呼叫端配置的緩衝區。
func (r *ReversibleRNG[T]) FillNext(buf []T) {
	for i := range buf {
		buf[i] = r.Next()
	}
}

// FillPrevious 以之前的樣本填滿緩衝區，排序約定與 PreviousN 相同。
func (r *ReversibleRNG[T]) FillPrevious(buf []T) {
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = r.Previous()
	}
}

// Seed 重新播種引擎並把位置歸零。
func (r *ReversibleRNG[T]) Seed(seed uint64) {
	r.eng.Seed(seed)
	r.pos = 0
}

// SeedStream 以指定序列重新播種；引擎不支援多重序列時視為誤用。
func (r *ReversibleRNG[T]) SeedStream(seed, seq uint64) {
	ss, ok := r.eng.(engine.StreamSeeder)
	if !ok {
		panic("ReversibleRNG: engine does not support stream seeding")
	}
	ss.SeedStream(seed, seq)
	r.pos = 0
}

// SeedRandom 從系統亂數來源重新播種。
func (r *ReversibleRNG[T]) SeedRandom() {
	r.Seed(engine.RandomSeed())
}

// Discard 抽出並丟棄 n 個正向樣本；位置前進 n。
func (r *ReversibleRNG[T]) Discard(n uint64) {
	for ; n > 0; n-- {
		r.Next()
	}
}

// Position 回傳有號位置（淨正向樣本數）。
func (r *ReversibleRNG[T]) Position() int64 { return r.pos }

// Engine 回傳底層引擎，僅供唯讀檢視（如字組流輸出）之用。
func (r *ReversibleRNG[T]) Engine() engine.Engine { return r.eng }

// Equal 報告 (engine, distribution, position) 三元組是否相等。
func (r *ReversibleRNG[T]) Equal(other *ReversibleRNG[T]) bool {
	return other != nil &&
		r.eng.Equal(other.eng) &&
		r.dist.Equal(other.dist) &&
		r.pos == other.pos
}

// Encode 輸出完整文字快照：引擎狀態、分布參數、位置。
func (r *ReversibleRNG[T]) Encode() string {
	b := &corefmt.Builder{}
	r.dist.EncodeTo(b)
	b.PutInt64(r.pos)
	return r.eng.Encode() + " " + b.String()
}

// Decode 讀回 Encode 產生的快照。失敗時 RNG 狀態未定義但仍合法。
func (r *ReversibleRNG[T]) Decode(s string) error {
	fields := strings.Fields(s)
	// 引擎快照的欄位數由其目前組態決定
	engN := len(strings.Fields(r.eng.Encode()))
	if len(fields) < engN {
		return errs.NewWarn("decode rng failed: truncated engine snapshot")
	}
	if err := r.eng.Decode(strings.Join(fields[:engN], " ")); err != nil {
		return err
	}
	sc := corefmt.NewScanner(strings.Join(fields[engN:], " "))
	r.dist.DecodeFrom(sc)
	pos := sc.Int64()
	if err := sc.Done(); err != nil {
		return err
	}
	r.pos = pos
	return nil
}
