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

// Package revlab 提供可逆亂數產生器（RRNG）的組裝入口。
//
// 核心是三層結構：
//  1. sdk/engine：可逆均勻位元引擎（PCG 家族、Mersenne）。
//  2. sdk/dist：每樣本消耗固定字組數的分布取樣器，取樣可逆性
//     完全繼承自引擎。
//  3. ReversibleRNG：引擎 + 分布 + 有號位置的包裝，往返律
//     NextN(N) == PreviousN(N) 是整個系統的核心性質。
//
// Lab 是「組裝器」：它持有一份 Catalog（具名預設 → 設定檔），
// 依設定建出引擎、RNG、字組流與驗證模擬器。設定檔來源一律以
// fs.FS 注入，Lab 本身不綁定任何檔案路徑概念。
package revlab

import (
	"io/fs"

	"github.com/zintix-labs/revlab/catalog"
	"github.com/zintix-labs/revlab/errs"
	"github.com/zintix-labs/revlab/sdk/dist"
	"github.com/zintix-labs/revlab/sdk/engine"
	"github.com/zintix-labs/revlab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 NewLab() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 可以用 go:embed 把 configs 直接編進 binary（部署最穩定）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是可逆 RNG 的組裝器與運行入口。
//
// 使用流程分成兩階段：
//   - 註冊階段：建立 Catalog、檢查設定檔存在性與重複。
//   - 執行階段：依預設名稱建出 Engine / RNG / WordStream。
//
// runtime 一旦開始（例如已對外服務），不應再變更 Catalog。
type Lab struct {
	cat *catalog.Catalog
	sum []catalog.Summary
}

// NewLab 建立一個 Lab。cfgs 至少要有一個設定檔來源；entries 指名要
// 收錄的預設與其設定檔。註冊完成後 Catalog 隨即凍結。
func NewLab(cfgs []fs.FS, entries ...catalog.Entry) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("at least one config FS is required")
	}
	if len(entries) == 0 {
		return nil, errs.NewFatal("at least one preset entry is required")
	}
	cat, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	if err := cat.Register(entries...); err != nil {
		return nil, err
	}
	// 註冊階段結束就把所有設定讀一遍：缺漏與參數錯誤在這裡爆，
	// 不要等到 runtime。
	sum, err := cat.Summaries()
	if err != nil {
		return nil, err
	}
	cat.Freeze()
	return &Lab{cat: cat, sum: sum}, nil
}

// Catalog 回傳已凍結的目錄。
func (l *Lab) Catalog() *catalog.Catalog { return l.cat }

// Summaries 回傳全部預設的摘要（列表 API 用）。
func (l *Lab) Summaries() []catalog.Summary {
	return append([]catalog.Summary(nil), l.sum...)
}

// Setting 讀出指定預設的完整組態。
func (l *Lab) Setting(name string) (*spec.RNGSetting, error) {
	return l.cat.SettingByName(name)
}

// NewEngine 依預設名稱建出已播種的引擎。
func (l *Lab) NewEngine(name string) (engine.Engine, *spec.RNGSetting, error) {
	rs, err := l.cat.SettingByName(name)
	if err != nil {
		return nil, nil, err
	}
	e, err := BuildEngine(rs)
	if err != nil {
		return nil, nil, err
	}
	return e, rs, nil
}

// NewFloatRNG 依預設名稱建出浮點樣本的 RNG；預設的分布必須是
// uniform-real、normal 或 exponential。
func (l *Lab) NewFloatRNG(name string) (*ReversibleRNG[float64], error) {
	e, rs, err := l.NewEngine(name)
	if err != nil {
		return nil, err
	}
	return buildFloatRNG(e, rs)
}

// NewIntRNG 依預設名稱建出整數樣本的 RNG；預設的分布必須是
// uniform-int。
func (l *Lab) NewIntRNG(name string) (*ReversibleRNG[int64], error) {
	e, rs, err := l.NewEngine(name)
	if err != nil {
		return nil, err
	}
	if !rs.IsInt() {
		return nil, errs.Warnf("preset %q does not sample integers", name)
	}
	return New[int64](e, dist.NewUniformInt(rs.Dist.A, rs.Dist.B)), nil
}

// NewStream 依預設名稱建出 32 位元字組流（統計測試批次用）。
func (l *Lab) NewStream(name string) (*WordStream, error) {
	e, _, err := l.NewEngine(name)
	if err != nil {
		return nil, err
	}
	return NewWordStream(e), nil
}

// BuildEngine 依組態建出已播種的引擎。Seed 省略時以系統亂數播種。
func BuildEngine(rs *spec.RNGSetting) (engine.Engine, error) {
	seed := engine.RandomSeed()
	if rs.Seed != nil {
		seed = *rs.Seed
	}
	var e engine.Engine
	switch rs.Engine {
	case spec.EnginePCG32:
		e = engine.NewPCG32Seeded(seed)
	case spec.EnginePCG64, "":
		e = engine.NewPCG64Seeded(seed)
	case spec.EnginePCG64CM:
		e = engine.NewPCG64CMSeeded(seed)
	case spec.EnginePCG64Fast:
		e = engine.NewPCG64FastSeeded(seed)
	case spec.EngineMersenne:
		e = engine.NewMersenneSeeded(seed)
	default:
		return nil, errs.Warnf("unknown engine kind %q", rs.Engine)
	}
	if rs.Stream != nil {
		ss, ok := e.(engine.StreamSeeder)
		if !ok {
			return nil, errs.Warnf("engine %q has no selectable streams", rs.Engine)
		}
		ss.SeedStream(seed, *rs.Stream)
	}
	return e, nil
}

func buildFloatRNG(e engine.Engine, rs *spec.RNGSetting) (*ReversibleRNG[float64], error) {
	switch rs.Dist.Kind {
	case spec.DistUniformReal:
		return New[float64](e, dist.NewUniformReal(rs.Dist.Low, rs.Dist.High)), nil
	case spec.DistNormal:
		return New[float64](e, dist.NewNormal(rs.Dist.Mean, rs.Dist.StdDev)), nil
	case spec.DistExponential:
		return New[float64](e, dist.NewExponential(rs.Dist.Lambda)), nil
	default:
		return nil, errs.Warnf("preset %q does not sample floats", rs.Name)
	}
}
