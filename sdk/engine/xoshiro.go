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

// SplitMix64 是 Java 8 SplittableRandom 的固定增量版本，
// 可通過 BigCrush，在這裡專門用來把 64 位元種子展開成更大的狀態。
// 參見 http://dx.doi.org/10.1145/2714064.2660195。
type SplitMix64 struct {
	x uint64
}

// NewSplitMix64 以指定種子建立產生器。
func NewSplitMix64(seed uint64) *SplitMix64 {
	return &SplitMix64{x: seed}
}

// Next 回傳下一個 64 位元字組。
func (s *SplitMix64) Next() uint64 {
	s.x += 0x9e3779b97f4a7c15
	z := s.x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

const tagXoshiro = "xoshiro256p"

// Xoshiro256 是 Blackman 與 Vigna 2018 年的 xoshiro256+ 1.0。
// 除最低三個位元可能不過線性測試外通過所有已知統計測試，
// 適合以高位元產生浮點數。
//
// 它不是可逆引擎：這裡只作為 ubit.Source 使用，供 ziggurat 尾端與
// 32 位元引擎的 64 位元範圍取樣路徑充當「以單一字組決定性播種」的
// 暫時性產生器。
type Xoshiro256 struct {
	state [4]uint64
}

// NewXoshiro256 以 SplitMix64 展開種子建立產生器。
func NewXoshiro256(seed uint64) *Xoshiro256 {
	x := &Xoshiro256{}
	x.Seed(seed)
	return x
}

// Seed 重新播種，狀態以 SplitMix64 連抽四個字組填滿。
func (x *Xoshiro256) Seed(seed uint64) {
	sm := NewSplitMix64(seed)
	for i := range x.state {
		x.state[i] = sm.Next()
	}
}

// Word 回傳下一個 64 位元字組。
func (x *Xoshiro256) Word() uint64 {
	result := x.state[0] + x.state[3]
	t := x.state[1] << 17

	x.state[2] ^= x.state[0]
	x.state[3] ^= x.state[1]
	x.state[1] ^= x.state[2]
	x.state[0] ^= x.state[3]

	x.state[2] ^= t
	x.state[3] = bits.RotateLeft64(x.state[3], 45)

	return result
}

// Max 回傳輸出範圍上界。
func (x *Xoshiro256) Max() uint64 { return math.MaxUint64 }

// Discard 丟棄 n 個字組。
func (x *Xoshiro256) Discard(n uint64) {
	for ; n > 0; n-- {
		x.Word()
	}
}

// Equal 報告兩產生器內部狀態是否相同。
func (x *Xoshiro256) Equal(other *Xoshiro256) bool {
	return other != nil && x.state == other.state
}

// Encode 輸出文字快照。
func (x *Xoshiro256) Encode() string {
	b := &corefmt.Builder{}
	b.PutString(tagXoshiro)
	for _, w := range x.state {
		b.PutUint64(w)
	}
	return b.String()
}

// Decode 讀回 Encode 產生的快照。
func (x *Xoshiro256) Decode(s string) error {
	sc := corefmt.NewScanner(s)
	sc.Expect(tagXoshiro)
	var st [4]uint64
	for i := range st {
		st[i] = sc.Uint64()
	}
	if err := sc.Done(); err != nil {
		return err
	}
	x.state = st
	return nil
}
