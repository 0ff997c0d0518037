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

	"github.com/zintix-labs/revlab/corefmt"
	"github.com/zintix-labs/revlab/errs"
)

const (
	mtWordSize  = 64
	mtStateSize = 312
	mtShiftSize = 156

	mtUpperMask uint64 = 0xffffffff80000000
	mtLowerMask uint64 = ^mtUpperMask
	mtXorMask   uint64 = 0xb5026f5aa96619e9
	mtFirstMask uint64 = 0x8000000000000000

	mtTemperingU        = 29
	mtTemperingD uint64 = 0x5555555555555555
	mtTemperingS        = 17
	mtTemperingB uint64 = 0x71d67fffeda60000
	mtTemperingT        = 37
	mtTemperingC uint64 = 0xfff7eee000000000
	mtTemperingL        = 43

	mtInitMultiplier uint64 = 6364136223846793005

	// MersenneDefaultSeed 與 std::mt19937_64 的預設種子一致。
	MersenneDefaultSeed = 5489

	tagMersenne = "mersenne"
)

// Mersenne 為 64 位元 MT19937 的可逆版本：312 字組的狀態區塊，
// 前進時以 twist 批次轉移，後退時以 untwist 反推同一個區塊。
//
// Tempering 只作用在輸出上，狀態反推不需要反轉它。
//
// 區塊邊界有一組狀態別名：(B, pos=312) 與 (twist(B), pos=0) 是同一個
// 邏輯狀態，往返後停在哪一側取決於最後一步的方向。Encode 與 Equal
// 會把 pos=0 正規化成 untwist 後的 pos=312，快照比對不受別名影響；
// 搭配 Seed 對字組 0 死位元的改寫（見 Seed），從剛播種的狀態出發的
// 往返也能精確還原快照。
//
// 統計品質註記：本引擎無法通過部分 BigCrush 子測試，這是 MT19937
// 本身的性質，不是實作缺陷。
type Mersenne struct {
	s   [mtStateSize]uint64
	pos int
}

// NewMersenne 以預設種子建立引擎。
func NewMersenne() *Mersenne { return NewMersenneSeeded(MersenneDefaultSeed) }

// NewMersenneSeeded 以指定種子建立引擎。
func NewMersenneSeeded(seed uint64) *Mersenne {
	r := &Mersenne{}
	r.Seed(seed)
	return r
}

// Seed 以 MT19937-64 的標準初始化展開種子。
//
// 展開後把字組 0 的低 31 位元改寫成 twist 在 k=311 轉移式下的正規值。
// 這些位元不影響任何輸出（twist 只讀字組 0 的高 33 位元），改寫後
// untwist 重建出的區塊與播種區塊完全相同。
func (r *Mersenne) Seed(seed uint64) {
	r.s[0] = seed
	for i := 1; i < mtStateSize; i++ {
		x := r.s[i-1]
		x ^= x >> (mtWordSize - 2)
		x *= mtInitMultiplier
		x += uint64(i)
		r.s[i] = x
	}
	y := r.s[mtStateSize-1] ^ r.s[mtShiftSize-1]
	low := uint64(0)
	if y&mtFirstMask != 0 {
		y ^= mtXorMask
		low = 1
	}
	r.s[0] = (r.s[0] & mtUpperMask) | low | (y<<1)&mtLowerMask
	r.pos = mtStateSize
}

// Next 回傳下一個 64 位元字組。
func (r *Mersenne) Next() uint64 {
	if r.pos >= mtStateSize {
		r.twist()
	}
	out := mtTemper(r.s[r.pos])
	r.pos++
	return out
}

// Previous 回傳上一個字組。
func (r *Mersenne) Previous() uint64 {
	if r.pos <= 0 {
		r.untwist()
	}
	r.pos--
	return mtTemper(r.s[r.pos])
}

// Max 回傳輸出範圍上界。
func (r *Mersenne) Max() uint64 { return math.MaxUint64 }

// Discard 等價於呼叫 n 次 Next 後丟棄輸出，但跳過 tempering。
func (r *Mersenne) Discard(n uint64) {
	for n > uint64(mtStateSize-r.pos) {
		n -= uint64(mtStateSize - r.pos)
		r.twist()
	}
	r.pos += int(n)
}

// Equal 報告兩引擎是否處於同一個邏輯狀態（邊界別名視為相同）。
func (r *Mersenne) Equal(other Engine) bool {
	o, ok := other.(*Mersenne)
	return ok && r.canonical() == o.canonical()
}

// Encode 輸出文字快照：312 個狀態字組與目前位置（正規化後）。
func (r *Mersenne) Encode() string {
	c := r.canonical()
	b := &corefmt.Builder{}
	b.PutString(tagMersenne)
	for _, w := range c.s {
		b.PutUint64(w)
	}
	b.PutInt64(int64(c.pos))
	return b.String()
}

// canonical 把邊界別名 (twist(B), pos=0) 換成 (B, pos=312) 的表示。
func (r *Mersenne) canonical() Mersenne {
	c := *r
	if c.pos == 0 {
		c.untwist()
	}
	return c
}

// Decode 讀回 Encode 產生的快照。
func (r *Mersenne) Decode(s string) error {
	sc := corefmt.NewScanner(s)
	sc.Expect(tagMersenne)
	var st [mtStateSize]uint64
	for i := range st {
		st[i] = sc.Uint64()
	}
	pos := sc.Int64()
	if sc.Err() == nil && (pos < 0 || pos > mtStateSize) {
		return errs.Warnf("decode mersenne failed: position %d out of range", pos)
	}
	if err := sc.Done(); err != nil {
		return err
	}
	r.s, r.pos = st, int(pos)
	return nil
}

// twist 對整個狀態區塊做一次前進轉移並把位置歸零。
func (r *Mersenne) twist() {
	for k := 0; k < mtStateSize; k++ {
		y := (r.s[k] & mtUpperMask) | (r.s[(k+1)%mtStateSize] & mtLowerMask)
		v := r.s[(k+mtShiftSize)%mtStateSize] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mtXorMask
		}
		r.s[k] = v
	}
	r.pos = 0
}

// untwist 是 twist 的反函數，由高索引往低索引逐字組還原。
//
// 每個字組的高 33 位元由本位置的 xor 差回推；xor_mask 是否被套用
// 可由最高位元判讀（y>>1 的最高位元必為 0）。低 31 位元與最低位元
// 則由前一個位置的差回推。
// 參考 https://jazzy.id.au/2010/09/25/cracking_random_number_generators_part_4.html
func (r *Mersenne) untwist() {
	for k := mtStateSize - 1; k >= 0; k-- {
		y := r.s[k] ^ r.s[(k+mtShiftSize)%mtStateSize]
		if y&mtFirstMask != 0 {
			y ^= mtXorMask
		}
		r.s[k] = (y << 1) & mtUpperMask

		y = r.s[(k-1+mtStateSize)%mtStateSize] ^ r.s[(k-1+mtShiftSize)%mtStateSize]
		if y&mtFirstMask != 0 {
			y ^= mtXorMask
			r.s[k] |= 1
		}
		r.s[k] |= (y << 1) & mtLowerMask
	}
	r.pos = mtStateSize
}

// mtTemper 為 MT19937-64 的輸出混淆。
func mtTemper(z uint64) uint64 {
	z ^= (z >> mtTemperingU) & mtTemperingD
	z ^= (z << mtTemperingS) & mtTemperingB
	z ^= (z << mtTemperingT) & mtTemperingC
	z ^= z >> mtTemperingL
	return z
}

var _ Engine = (*Mersenne)(nil)
