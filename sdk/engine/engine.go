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

// Package engine 提供可逆的均勻位元引擎。
//
// 每個引擎的狀態轉移函數 F 都有明確的反函數 F⁻¹：Next 走 F，
// Previous 走 F⁻¹。對任何可達狀態 S，Next 後接 Previous 會回到 S
// 且兩次輸出的值相同；反向亦然。分布層靠這個性質把取樣變成可逆。
package engine

import (
	"crypto/rand"
	"math"
	"math/big"
)

// Engine 是可逆均勻位元引擎的共同能力集合。
//
// 約定：
//   - Next / Previous 回傳的字組均勻分布於 [0, Max()]；32 位元引擎
//     把輸出放在低 32 位元。
//   - Discard(n) 與呼叫 n 次 Next 後的狀態位元相同（輸出被丟棄）。
//   - Encode 輸出以空白分隔的十進位欄位；Decode 讀回後 Equal 必須成立。
//     Decode 失敗時引擎狀態未定義但仍合法。
type Engine interface {
	Next() uint64
	Previous() uint64
	Max() uint64
	Seed(seed uint64)
	Discard(n uint64)
	Equal(other Engine) bool
	Encode() string
	Decode(s string) error
}

// StreamSeeder 由支援多重序列（selectable stream）的引擎額外實作。
type StreamSeeder interface {
	SeedStream(seed, seq uint64)
}

// Forward 將 Engine 轉接為 ubit.Source：取樣走 Next。
type Forward struct{ E Engine }

func (f Forward) Word() uint64 { return f.E.Next() }
func (f Forward) Max() uint64  { return f.E.Max() }

// Reversed 將 Engine 轉接為 ubit.Source：取樣改走 Previous。
// 把它交給分布取樣函數，同一份分布程式碼就成為反向取樣器。
// Reversed 只在單次取樣期間借用引擎，不得跨取樣持有。
type Reversed struct{ E Engine }

func (r Reversed) Word() uint64 { return r.E.Previous() }
func (r Reversed) Max() uint64  { return r.E.Max() }

// RandomSeed 從作業系統亂數來源取得一次性種子。
func RandomSeed() uint64 {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		panic("engine: read system entropy failed: " + err.Error())
	}
	return seed.Uint64()
}
