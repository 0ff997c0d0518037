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

// Package demo 打包內建示範預設，讓指令列工具與測試能直接開箱使用。
package demo

import (
	"github.com/zintix-labs/revlab"
	"github.com/zintix-labs/revlab/catalog"
	"github.com/zintix-labs/revlab/demo/demo_configs"
	"github.com/zintix-labs/revlab/errs"
	"github.com/zintix-labs/revlab/server/logger"
	"github.com/zintix-labs/revlab/server/svrcfg"
)

// Entries 列出內建預設與其設定檔的對應。
var Entries = []catalog.Entry{
	{Name: "unit", ConfigName: "unit.yaml"},
	{Name: "dice", ConfigName: "dice.yaml"},
	{Name: "gauss", ConfigName: "gauss.yaml"},
	{Name: "decay", ConfigName: "decay.yaml"},
	{Name: "raw", ConfigName: "raw.yaml"},
	{Name: "lotto", ConfigName: "lotto.json"},
}

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := NewLab()
	if err != nil {
		return nil, errs.NewFatal("new revlab failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log:        logger.NewDefaultAsyncLogger(logger.ModeDev),
		SimWorkers: 4,
		Lab:        lab,
	}
	return scfg, nil
}

func NewLab() (*revlab.Lab, error) {
	return revlab.NewLab(
		revlab.Configs(demo_configs.FS),
		Entries...,
	)
}
