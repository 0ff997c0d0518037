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

package spec_test

import (
	"testing"

	"github.com/zintix-labs/revlab/spec"
)

func TestYAMLMinimalDefaults(t *testing.T) {
	raw := []byte(`
name: unit
dist:
  kind: uniform-real
`)
	rs, err := spec.GetRNGSettingByYAML(raw)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if rs.Engine != spec.EnginePCG64 {
		t.Fatalf("default engine got %q want pcg64", rs.Engine)
	}
	if rs.Seed != nil {
		t.Fatalf("omitted seed should stay nil")
	}
	if rs.Stream != nil {
		t.Fatalf("omitted stream should stay nil")
	}
	// 單位區間慣用預設
	if rs.Dist.Low != 0 || rs.Dist.High != 1 {
		t.Fatalf("default range got [%g,%g) want [0,1)", rs.Dist.Low, rs.Dist.High)
	}
	if rs.IsInt() {
		t.Fatalf("uniform-real must not be integer typed")
	}
}

func TestYAMLFullSetting(t *testing.T) {
	raw := []byte(`
name: decay
engine: pcg64cm
seed: 99
stream: 3
dist:
  kind: exponential
  lambda: 0.5
`)
	rs, err := spec.GetRNGSettingByYAML(raw)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if rs.Engine != spec.EnginePCG64CM {
		t.Fatalf("engine got %q", rs.Engine)
	}
	if rs.Seed == nil || *rs.Seed != 99 {
		t.Fatalf("seed got %v want 99", rs.Seed)
	}
	if rs.Stream == nil || *rs.Stream != 3 {
		t.Fatalf("stream got %v want 3", rs.Stream)
	}
	if rs.Dist.Lambda != 0.5 {
		t.Fatalf("lambda got %g want 0.5", rs.Dist.Lambda)
	}
}

func TestJSONSetting(t *testing.T) {
	raw := []byte(`{"name":"dice","engine":"pcg32","seed":7,"dist":{"kind":"uniform-int","a":1,"b":6}}`)
	rs, err := spec.GetRNGSettingByJSON(raw)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if rs.Engine != spec.EnginePCG32 || rs.Dist.A != 1 || rs.Dist.B != 6 {
		t.Fatalf("unexpected setting: %+v", rs)
	}
	if !rs.IsInt() {
		t.Fatalf("uniform-int must be integer typed")
	}
}

func TestNormalAndLambdaDefaults(t *testing.T) {
	rs, err := spec.GetRNGSettingByYAML([]byte("name: g\ndist:\n  kind: normal\n"))
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if rs.Dist.StdDev != 1 {
		t.Fatalf("default stddev got %g want 1", rs.Dist.StdDev)
	}

	rs, err = spec.GetRNGSettingByYAML([]byte("name: e\ndist:\n  kind: exponential\n"))
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if rs.Dist.Lambda != 1 {
		t.Fatalf("default lambda got %g want 1", rs.Dist.Lambda)
	}
}

func TestSettingRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"unknown engine", "name: x\nengine: lcg\ndist:\n  kind: uniform-real\n"},
		{"unknown dist", "name: x\ndist:\n  kind: cauchy\n"},
		{"missing dist kind", "name: x\ndist: {}\n"},
		{"int bounds inverted", "name: x\ndist:\n  kind: uniform-int\n  a: 6\n  b: 1\n"},
		{"real bounds inverted", "name: x\ndist:\n  kind: uniform-real\n  low: 2\n  high: 1\n"},
		{"negative stddev", "name: x\ndist:\n  kind: normal\n  stddev: -1\n"},
		{"negative lambda", "name: x\ndist:\n  kind: exponential\n  lambda: -0.5\n"},
		{"stream on pcg64fast", "name: x\nengine: pcg64fast\nstream: 1\ndist:\n  kind: uniform-real\n"},
		{"stream on mersenne", "name: x\nengine: mersenne\nstream: 1\ndist:\n  kind: uniform-real\n"},
		{"normal on pcg32", "name: x\nengine: pcg32\ndist:\n  kind: normal\n"},
		{"exponential on pcg32", "name: x\nengine: pcg32\ndist:\n  kind: exponential\n"},
		{"broken yaml", "name: [\n"},
	}
	for _, c := range cases {
		if _, err := spec.GetRNGSettingByYAML([]byte(c.raw)); err == nil {
			t.Fatalf("%s: expected rejection", c.name)
		}
	}

	if _, err := spec.GetRNGSettingByJSON([]byte("{not json")); err == nil {
		t.Fatalf("broken json: expected rejection")
	}
}
