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

package spec

import (
	"encoding/json"

	"github.com/zintix-labs/revlab/errs"
	"gopkg.in/yaml.v3"
)

// GetRNGSettingByYAML
// 會讀取 YAML 設定、補上慣用預設並執行基本檢查後回傳。
func GetRNGSettingByYAML(data []byte) (*RNGSetting, error) {
	rs := &RNGSetting{}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	if err := rs.init(); err != nil {
		return nil, errs.Wrap(err, "rng setting initialized err")
	}

	return rs, nil
}

// GetRNGSettingByJSON
// 會讀取 JSON 設定、補上慣用預設並執行基本檢查後回傳。
func GetRNGSettingByJSON(data []byte) (*RNGSetting, error) {
	rs := &RNGSetting{}
	if err := json.Unmarshal(data, rs); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	if err := rs.init(); err != nil {
		return nil, errs.Wrap(err, "rng setting initialized err")
	}

	return rs, nil
}
