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

// Package dist 提供建立在 ubit.Source 之上的機率分布取樣器。
//
// 每個取樣器對每個樣本消耗「固定且決定性」數量的來源字組，
// 且取捨決策只依賴抽出的字組本身。因此把同一個取樣器接上
// 反向的來源（engine.Reversed），它會以相反順序重新消耗同樣的
// 字組並重現同樣的樣本：取樣的可逆性完全繼承自引擎。
//
// 分布本身無狀態，只攜帶不可變參數。建構參數違反前置條件
// （a > b、stddev ≤ 0、λ ≤ 0）屬於呼叫端誤用，以 panic 表達。
package dist

import (
	"github.com/zintix-labs/revlab/corefmt"
	"github.com/zintix-labs/revlab/sdk/ubit"
)

// Number 為支援的樣本型別。
type Number interface {
	~int64 | ~float64
}

// Sampler 是分布取樣器的共同能力集合。
// EncodeTo / DecodeFrom 以 corefmt 欄位串接參數，供 RNG 包裝層
// 組合出完整快照。
type Sampler[T Number] interface {
	Sample(src ubit.Source) T
	Equal(other Sampler[T]) bool
	EncodeTo(b *corefmt.Builder)
	DecodeFrom(sc *corefmt.Scanner)
}
