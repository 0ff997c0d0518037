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
	"github.com/zintix-labs/revlab/sdk/ubit"
)

// Exponential 以反 CDF 法取樣指數分布，每個樣本恰好消耗一個
// 64 位元來源字組。
type Exponential struct {
	lambda float64
}

// NewExponential 建立指數分布；λ ≤ 0 視為誤用。
func NewExponential(lambda float64) *Exponential {
	if lambda <= 0 {
		panic("Exponential: require lambda > 0")
	}
	return &Exponential{lambda: lambda}
}

// Lambda 回傳速率參數。
func (d *Exponential) Lambda() float64 { return d.lambda }

// Sample 從來源抽出一個樣本。
func (d *Exponential) Sample(src ubit.Source) float64 {
	return -math.Log(1-ubit.Canonical(src)) / d.lambda
}

// Equal 報告分布參數是否相同。
func (d *Exponential) Equal(other Sampler[float64]) bool {
	o, ok := other.(*Exponential)
	return ok && *d == *o
}

// EncodeTo 寫出分布參數。
func (d *Exponential) EncodeTo(b *corefmt.Builder) {
	b.PutFloat64(d.lambda)
}

// DecodeFrom 讀回分布參數。
func (d *Exponential) DecodeFrom(sc *corefmt.Scanner) {
	d.lambda = sc.Float64()
}

var _ Sampler[float64] = (*Exponential)(nil)
