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

// Package ubit 提供均勻位元來源的共用工具：範圍內省、無偏整數縮減與
// 高位元浮點映射。所有分布取樣皆建立在這層之上。
package ubit

import (
	"math"
	"math/bits"
)

// Source 是均勻位元來源的最小能力集合。
// Word 回傳一個均勻分布於 [0, Max()] 的字組；32 位元引擎的輸出
// 置於低 32 位元（高位為零），此時 Max() 回傳 Full32。
type Source interface {
	Word() uint64
	Max() uint64
}

const (
	// Full64 為 64 位元引擎的輸出範圍（max - min）。
	Full64 uint64 = math.MaxUint64
	// Full32 為 32 位元引擎的輸出範圍。
	Full32 uint64 = math.MaxUint32
)

// Lemire 以近乎免除法的演算法將 64 位元來源縮減到 [0, bound)，
// 無偏差。常見情況只消耗一個字組；每次重抽恰好再消耗一個字組，
// 且接受條件只依賴抽出的字組與 bound，因此來源倒轉重播同樣的
// 字組序列會重現同樣的結果。
// 參見 https://arxiv.org/abs/1805.10941。
func Lemire(src Source, bound uint64) uint64 {
	if src.Max() != Full64 {
		panic("ubit: Lemire requires a 64-bit source")
	}
	if bound == 0 {
		panic("ubit: Lemire bound must be > 0")
	}
	hi, lo := bits.Mul64(src.Word(), bound)
	if lo < bound {
		threshold := -bound % bound
		for lo < threshold {
			hi, lo = bits.Mul64(src.Word(), bound)
		}
	}
	return hi
}

// Float64 以高位元將 64 位元整數均勻映射到 [0, 1)。
// double 的尾數有 52 位元，因此 [0, 2^53) 的整數除以 2^53 可無偏
// 產生雙精度浮點值。此法對低位元較弱的產生器（如 xoshiro256+）
// 特別合適。
func Float64(x uint64) float64 {
	return float64(x>>11) * 0x1.0p-53
}

// Float32 是 Float64 的 32 位元對應：高 24 位元除以 2^24。
func Float32(x uint32) float32 {
	return float32(x>>8) * 0x1.0p-24
}

// Canonical 從 64 位元來源抽一個字組並映射到 [0, 1)。
// 保證只呼叫一次 Word。
func Canonical(src Source) float64 {
	if src.Max() != Full64 {
		panic("ubit: Canonical requires a 64-bit source")
	}
	return Float64(src.Word())
}
