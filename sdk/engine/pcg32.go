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

const (
	pcg32Multiplier = 6364136223846793005
	// pcg32Multiplier 對 2^64 的模乘法反元素；
	// pcg32Multiplier * pcg32Inverse ≡ 1 (mod 2^64)。
	pcg32Inverse   = 13877824140714322085
	pcg32IncDefault = 1442695040888963407

	// DefaultSeed 為 PCG 家族的預設種子。
	DefaultSeed = 0xcafef00dd15ea5e5

	tagPCG32 = "pcg32"
)

// PCG32 為 64 位元狀態、32 位元輸出（XSH-RR）的可逆 PCG 引擎。
//
// 狀態轉移為 LCG：state ← state·A + C。輸出取自轉移「前」的狀態
// （output-previous 排程），因此 Previous 先反推 LCG 再對所得狀態
// 套用輸出排列，得到與前一次 Next 相同的值。
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 以預設種子與預設序列建立引擎。
func NewPCG32() *PCG32 {
	return NewPCG32Seeded(DefaultSeed)
}

// NewPCG32Seeded 以指定種子與預設序列建立引擎。
func NewPCG32Seeded(seed uint64) *PCG32 {
	r := &PCG32{}
	r.Seed(seed)
	return r
}

// Seed 以預設序列重新播種。
func (r *PCG32) Seed(seed uint64) {
	r.inc = pcg32IncDefault
	r.state = (seed+r.inc)*pcg32Multiplier + r.inc
}

// SeedStream 以指定序列重新播種。不同 seq 產生互不相交的輸出序列。
func (r *PCG32) SeedStream(seed, seq uint64) {
	r.inc = (seq << 1) | 1
	r.state = (seed+r.inc)*pcg32Multiplier + r.inc
}

// Next 推進狀態並回傳下一個 32 位元字組（置於低 32 位元）。
func (r *PCG32) Next() uint64 {
	oldstate := r.state
	r.state = oldstate*pcg32Multiplier + r.inc
	return uint64(pcg32Output(oldstate))
}

// Previous 反推狀態並回傳上一個字組。
func (r *PCG32) Previous() uint64 {
	r.state = (r.state - r.inc) * pcg32Inverse
	return uint64(pcg32Output(r.state))
}

// Max 回傳輸出範圍上界。
func (r *PCG32) Max() uint64 { return math.MaxUint32 }

// Discard 等價於呼叫 n 次 Next 後丟棄輸出。
func (r *PCG32) Discard(n uint64) {
	for ; n > 0; n-- {
		r.state = r.state*pcg32Multiplier + r.inc
	}
}

// Equal 報告兩引擎內部狀態是否完全相同。
func (r *PCG32) Equal(other Engine) bool {
	o, ok := other.(*PCG32)
	return ok && *r == *o
}

// Encode 輸出文字快照。
func (r *PCG32) Encode() string {
	b := &corefmt.Builder{}
	b.PutString(tagPCG32).PutUint64(r.state).PutUint64(r.inc)
	return b.String()
}

// Decode 讀回 Encode 產生的快照。
func (r *PCG32) Decode(s string) error {
	sc := corefmt.NewScanner(s)
	sc.Expect(tagPCG32)
	state := sc.Uint64()
	inc := sc.Uint64()
	if err := sc.Done(); err != nil {
		return err
	}
	r.state, r.inc = state, inc
	return nil
}

// pcg32Output 為 XSH-RR 輸出排列。
func pcg32Output(s uint64) uint32 {
	xorshifted := uint32(((s >> 18) ^ s) >> 27)
	rot := uint32(s >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}

var (
	_ Engine       = (*PCG32)(nil)
	_ StreamSeeder = (*PCG32)(nil)
)
