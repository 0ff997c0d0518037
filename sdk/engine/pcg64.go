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

package engine

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/revlab/corefmt"
)

// uint128 以兩個 64 位元字組表示 128 位元無號整數，
// 運算一律模 2^128。
type uint128 struct {
	hi, lo uint64
}

func (x uint128) add(y uint128) uint128 {
	lo, carry := bits.Add64(x.lo, y.lo, 0)
	hi, _ := bits.Add64(x.hi, y.hi, carry)
	return uint128{hi, lo}
}

func (x uint128) sub(y uint128) uint128 {
	lo, borrow := bits.Sub64(x.lo, y.lo, 0)
	hi, _ := bits.Sub64(x.hi, y.hi, borrow)
	return uint128{hi, lo}
}

func (x uint128) mul(y uint128) uint128 {
	hi, lo := bits.Mul64(x.lo, y.lo)
	hi += x.hi*y.lo + x.lo*y.hi
	return uint128{hi, lo}
}

// PCG 的 128 位元乘數與增量，以及預先算好的模乘法反元素。
// multiplier * inverse ≡ 1 (mod 2^128)，測試以夾具驗證。
var (
	pcg64Multiplier = uint128{2549297995355413924, 4865540595714422341}
	pcg64Inverse    = uint128{566787436162029664, 11001107174925446285}

	pcg64CheapMultiplier = uint128{0, 0xda942042e4dd58b5}
	pcg64CheapInverse    = uint128{924194304566127212, 10053033838670173597}

	pcg64IncDefault = uint128{6364136223846793005, 1442695040888963407}
)

const (
	tagPCG64     = "pcg64"
	tagPCG64CM   = "pcg64cm"
	tagPCG64Fast = "pcg64fast"
)

// PCG64 為 128 位元狀態、64 位元輸出（XSL-RR）的可逆 PCG 引擎。
//
// 與 PCG32 相反，輸出取自轉移「後」的狀態（output-after 排程）：
// Next 先推進再輸出新狀態，Previous 先輸出目前狀態再反推。
//
// 三種組態共用本型別：
//   - 預設乘數 + setseq 增量（NewPCG64）
//   - cheap 乘數 + setseq 增量（NewPCG64CM）
//   - 預設乘數 + 零增量 MCG，週期 2^126（NewPCG64Fast）
type PCG64 struct {
	state uint128
	inc   uint128
	mult  uint128
	inv   uint128
	mcg   bool
	tag   string
}

// NewPCG64 以預設種子建立預設乘數的引擎。
func NewPCG64() *PCG64 { return NewPCG64Seeded(DefaultSeed) }

// NewPCG64Seeded 以指定種子建立預設乘數的引擎。
func NewPCG64Seeded(seed uint64) *PCG64 {
	r := &PCG64{
		inc:  pcg64IncDefault,
		mult: pcg64Multiplier,
		inv:  pcg64Inverse,
		tag:  tagPCG64,
	}
	r.Seed(seed)
	return r
}

// NewPCG64CM 以預設種子建立 cheap 乘數的引擎。
func NewPCG64CM() *PCG64 { return NewPCG64CMSeeded(DefaultSeed) }

// NewPCG64CMSeeded 以指定種子建立 cheap 乘數的引擎。
func NewPCG64CMSeeded(seed uint64) *PCG64 {
	r := &PCG64{
		inc:  pcg64IncDefault,
		mult: pcg64CheapMultiplier,
		inv:  pcg64CheapInverse,
		tag:  tagPCG64CM,
	}
	r.Seed(seed)
	return r
}

// NewPCG64Fast 以預設種子建立零增量 MCG 引擎。
func NewPCG64Fast() *PCG64 { return NewPCG64FastSeeded(DefaultSeed) }

// NewPCG64FastSeeded 以指定種子建立零增量 MCG 引擎。
func NewPCG64FastSeeded(seed uint64) *PCG64 {
	r := &PCG64{
		mult: pcg64Multiplier,
		inv:  pcg64Inverse,
		mcg:  true,
		tag:  tagPCG64Fast,
	}
	r.Seed(seed)
	return r
}

// Seed 重新播種，保留引擎組態（乘數與序列）。
func (r *PCG64) Seed(seed uint64) {
	if r.mcg {
		// MCG 要求狀態為奇數；|3 同時保證非零。
		r.state = uint128{0, seed | 3}
		return
	}
	r.state = uint128{0, seed}.add(r.inc).mul(r.mult).add(r.inc)
}

// SeedStream 以指定序列重新播種。MCG 組態沒有可選序列。
func (r *PCG64) SeedStream(seed, seq uint64) {
	if r.mcg {
		panic("PCG64: mcg configuration has no selectable streams")
	}
	r.inc = uint128{seq >> 63, (seq << 1) | 1}
	r.Seed(seed)
}

// Next 推進狀態並回傳下一個 64 位元字組。
func (r *PCG64) Next() uint64 {
	r.state = r.state.mul(r.mult).add(r.inc)
	return pcg64Output(r.state)
}

// Previous 回傳上一個字組並反推狀態。
func (r *PCG64) Previous() uint64 {
	out := pcg64Output(r.state)
	r.state = r.state.sub(r.inc).mul(r.inv)
	return out
}

// Max 回傳輸出範圍上界。
func (r *PCG64) Max() uint64 { return math.MaxUint64 }

// Discard 等價於呼叫 n 次 Next 後丟棄輸出。
func (r *PCG64) Discard(n uint64) {
	for ; n > 0; n-- {
		r.state = r.state.mul(r.mult).add(r.inc)
	}
}

// Equal 報告兩引擎的組態與內部狀態是否完全相同。
func (r *PCG64) Equal(other Engine) bool {
	o, ok := other.(*PCG64)
	return ok && *r == *o
}

// Encode 輸出文字快照。
func (r *PCG64) Encode() string {
	b := &corefmt.Builder{}
	b.PutString(r.tag).
		PutUint64(r.state.hi).PutUint64(r.state.lo).
		PutUint64(r.inc.hi).PutUint64(r.inc.lo)
	return b.String()
}

// Decode 讀回 Encode 產生的快照。快照的組態標籤必須與本引擎一致。
func (r *PCG64) Decode(s string) error {
	sc := corefmt.NewScanner(s)
	sc.Expect(r.tag)
	state := uint128{sc.Uint64(), sc.Uint64()}
	inc := uint128{sc.Uint64(), sc.Uint64()}
	if err := sc.Done(); err != nil {
		return err
	}
	r.state, r.inc = state, inc
	return nil
}

// pcg64Output 為 XSL-RR 輸出排列。
func pcg64Output(s uint128) uint64 {
	return bits.RotateLeft64(s.hi^s.lo, -int(s.hi>>58))
}

var (
	_ Engine       = (*PCG64)(nil)
	_ StreamSeeder = (*PCG64)(nil)
)
