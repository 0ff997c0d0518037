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

package dist

import (
	"math"

	"github.com/zintix-labs/revlab/corefmt"
	"github.com/zintix-labs/revlab/sdk/engine"
	"github.com/zintix-labs/revlab/sdk/ubit"
)

// UniformInt 在閉區間 [a, b] 上均勻取樣整數。
type UniformInt struct {
	a, b int64
}

// NewUniformInt 建立均勻整數分布；a > b 視為誤用。
func NewUniformInt(a, b int64) *UniformInt {
	if a > b {
		panic("UniformInt: require a <= b")
	}
	return &UniformInt{a: a, b: b}
}

// NewUniformIntFull 建立涵蓋全 int64 範圍的均勻整數分布。
func NewUniformIntFull() *UniformInt {
	return NewUniformInt(math.MinInt64, math.MaxInt64)
}

// A 回傳下界。
func (d *UniformInt) A() int64 { return d.a }

// B 回傳上界。
func (d *UniformInt) B() int64 { return d.b }

// Sample 從來源抽出一個樣本。
//
// 路徑選擇依分布範圍與來源範圍而定，三條路徑都只依賴抽出的
// 字組本身做取捨，因此全部可逆：
//   - 範圍相等：一個字組直接平移。
//   - 來源較寬：64 位元來源走 Lemire；32 位元來源走拒絕取樣，
//     門檻為 urng_range − (urng_range mod (dist_range+1))。
//   - 來源較窄（32 位元來源、64 位元範圍）：抽三個字組組成
//     64 位元種子 ((u1⊕u3)<<32)|u2，以 SplitMix64 展開播種暫時性的
//     xoshiro256+，遞迴改用該 64 位元來源。兩個均勻 32 位元字組的
//     XOR 仍是均勻的雙射，種子因此均勻；遞迴是種子的純函數，
//     倒轉時三個字組以相反順序重現，樣本不變。
func (d *UniformInt) Sample(src ubit.Source) int64 {
	distRange := uint64(d.b) - uint64(d.a)
	urngRange := src.Max()

	switch {
	case urngRange == distRange:
		return int64(uint64(d.a) + src.Word())
	case urngRange > distRange:
		bound := distRange + 1
		if urngRange == ubit.Full64 {
			return int64(uint64(d.a) + ubit.Lemire(src, bound))
		}
		threshold := urngRange - urngRange%bound
		for {
			w := src.Word()
			if w < threshold {
				return int64(uint64(d.a) + w%bound)
			}
		}
	default:
		u1, u2, u3 := src.Word(), src.Word(), src.Word()
		seed := ((u1 ^ u3) << 32) | u2
		return d.Sample(engine.NewXoshiro256(seed))
	}
}

// Equal 報告分布參數是否相同。
func (d *UniformInt) Equal(other Sampler[int64]) bool {
	o, ok := other.(*UniformInt)
	return ok && *d == *o
}

// EncodeTo 寫出分布參數。
func (d *UniformInt) EncodeTo(b *corefmt.Builder) {
	b.PutInt64(d.a).PutInt64(d.b)
}

// DecodeFrom 讀回分布參數。
func (d *UniformInt) DecodeFrom(sc *corefmt.Scanner) {
	d.a = sc.Int64()
	d.b = sc.Int64()
}

// UniformReal 在半開區間 [a, b) 上均勻取樣浮點數。
type UniformReal struct {
	a, b float64
}

// NewUniformReal 建立均勻實數分布；a > b 視為誤用。
func NewUniformReal(a, b float64) *UniformReal {
	if a > b {
		panic("UniformReal: require a <= b")
	}
	return &UniformReal{a: a, b: b}
}

// NewUniformRealUnit 建立 [0, 1) 上的均勻實數分布。
func NewUniformRealUnit() *UniformReal {
	return NewUniformReal(0, 1)
}

// A 回傳下界。
func (d *UniformReal) A() float64 { return d.a }

// B 回傳上界。
func (d *UniformReal) B() float64 { return d.b }

// Sample 每個樣本恰好消耗一個來源字組：64 位元來源以高 53 位元
// 映射，32 位元來源以高 24 位元映射。
func (d *UniformReal) Sample(src ubit.Source) float64 {
	var u float64
	if src.Max() == ubit.Full64 {
		u = ubit.Float64(src.Word())
	} else {
		u = float64(ubit.Float32(uint32(src.Word())))
	}
	return u*(d.b-d.a) + d.a
}

// Equal 報告分布參數是否相同。
func (d *UniformReal) Equal(other Sampler[float64]) bool {
	o, ok := other.(*UniformReal)
	return ok && *d == *o
}

// EncodeTo 寫出分布參數。
func (d *UniformReal) EncodeTo(b *corefmt.Builder) {
	b.PutFloat64(d.a).PutFloat64(d.b)
}

// DecodeFrom 讀回分布參數。
func (d *UniformReal) DecodeFrom(sc *corefmt.Scanner) {
	d.a = sc.Float64()
	d.b = sc.Float64()
}

var (
	_ Sampler[int64]   = (*UniformInt)(nil)
	_ Sampler[float64] = (*UniformReal)(nil)
)
