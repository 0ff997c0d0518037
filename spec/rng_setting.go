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

// Package spec 定義 RNG 預設組態（RNGSetting）的資料模型與解析。
// 設定檔描述「哪個引擎、哪個分布、哪些參數、怎麼播種」，
// catalog 據此建檔，組裝層據此建出可用的 RNG。
package spec

import (
	"fmt"

	"github.com/zintix-labs/revlab/errs"
)

// EngineKind 列舉支援的可逆引擎。
type EngineKind string

const (
	EnginePCG32     EngineKind = "pcg32"
	EnginePCG64     EngineKind = "pcg64"
	EnginePCG64CM   EngineKind = "pcg64cm"
	EnginePCG64Fast EngineKind = "pcg64fast"
	EngineMersenne  EngineKind = "mersenne"
)

// DistKind 列舉支援的分布。
type DistKind string

const (
	DistUniformInt  DistKind = "uniform-int"
	DistUniformReal DistKind = "uniform-real"
	DistNormal      DistKind = "normal"
	DistExponential DistKind = "exponential"
)

// RNGSetting 是一個具名 RNG 預設的完整組態。
type RNGSetting struct {
	Name   string      `yaml:"name"   json:"name"`
	Engine EngineKind  `yaml:"engine" json:"engine"`
	Seed   *uint64     `yaml:"seed"   json:"seed"`   // 省略時以系統亂數播種
	Stream *uint64     `yaml:"stream" json:"stream"` // 省略時使用預設序列
	Dist   DistSetting `yaml:"dist"   json:"dist"`
}

// DistSetting 描述分布種類與參數；只有該種類用得到的欄位會被讀取。
type DistSetting struct {
	Kind   DistKind `yaml:"kind"   json:"kind"`
	A      int64    `yaml:"a"      json:"a"`      // uniform-int 下界
	B      int64    `yaml:"b"      json:"b"`      // uniform-int 上界
	Low    float64  `yaml:"low"    json:"low"`    // uniform-real 下界
	High   float64  `yaml:"high"   json:"high"`   // uniform-real 上界
	Mean   float64  `yaml:"mean"   json:"mean"`   // normal
	StdDev float64  `yaml:"stddev" json:"stddev"` // normal
	Lambda float64  `yaml:"lambda" json:"lambda"` // exponential
}

// init 填入省略欄位的慣用預設並執行基本檢查。
func (rs *RNGSetting) init() error {
	if rs.Engine == "" {
		rs.Engine = EnginePCG64
	}
	switch rs.Engine {
	case EnginePCG32, EnginePCG64, EnginePCG64CM, EnginePCG64Fast, EngineMersenne:
	default:
		return errs.NewFatal(fmt.Sprintf("preset %q: unknown engine %q", rs.Name, rs.Engine))
	}
	if rs.Stream != nil && (rs.Engine == EnginePCG64Fast || rs.Engine == EngineMersenne) {
		return errs.NewFatal(fmt.Sprintf("preset %q: engine %q has no selectable streams", rs.Name, rs.Engine))
	}

	d := &rs.Dist
	switch d.Kind {
	case DistUniformInt:
		if d.A > d.B {
			return errs.NewFatal(fmt.Sprintf("preset %q: uniform-int requires a <= b", rs.Name))
		}
	case DistUniformReal:
		if d.Low == 0 && d.High == 0 {
			d.High = 1 // 單位區間為慣用預設
		}
		if d.Low > d.High {
			return errs.NewFatal(fmt.Sprintf("preset %q: uniform-real requires low <= high", rs.Name))
		}
	case DistNormal:
		if d.StdDev == 0 {
			d.StdDev = 1
		}
		if d.StdDev <= 0 {
			return errs.NewFatal(fmt.Sprintf("preset %q: normal requires stddev > 0", rs.Name))
		}
	case DistExponential:
		if d.Lambda == 0 {
			d.Lambda = 1
		}
		if d.Lambda <= 0 {
			return errs.NewFatal(fmt.Sprintf("preset %q: exponential requires lambda > 0", rs.Name))
		}
	default:
		return errs.NewFatal(fmt.Sprintf("preset %q: unknown distribution %q", rs.Name, d.Kind))
	}

	// ziggurat 與反 CDF 需要 64 位元引擎
	if (d.Kind == DistNormal || d.Kind == DistExponential) && rs.Engine == EnginePCG32 {
		return errs.NewFatal(fmt.Sprintf("preset %q: %q requires a 64-bit engine", rs.Name, d.Kind))
	}
	return nil
}

// IsInt 報告此預設的樣本型別是否為整數。
func (rs *RNGSetting) IsInt() bool {
	return rs.Dist.Kind == DistUniformInt
}
