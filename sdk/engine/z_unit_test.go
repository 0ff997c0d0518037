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

package engine

import (
	"crypto/rand"
	"math"
	"math/big"
	"testing"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

func randomSeed(t *testing.T) uint64 {
	t.Helper()
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		t.Fatalf("read system entropy failed: %v", err)
	}
	return seed.Uint64()
}

// engineCases 列出全部引擎組態；工廠需回傳以相同種子初始化的新引擎。
func engineCases() []struct {
	name string
	make func(seed uint64) Engine
} {
	return []struct {
		name string
		make func(seed uint64) Engine
	}{
		{"pcg32", func(seed uint64) Engine { return NewPCG32Seeded(seed) }},
		{"pcg64", func(seed uint64) Engine { return NewPCG64Seeded(seed) }},
		{"pcg64cm", func(seed uint64) Engine { return NewPCG64CMSeeded(seed) }},
		{"pcg64fast", func(seed uint64) Engine { return NewPCG64FastSeeded(seed) }},
		{"mersenne", func(seed uint64) Engine { return NewMersenneSeeded(seed) }},
	}
}

// -----------------------------------------------------------------------------
// 可逆性
// -----------------------------------------------------------------------------

func TestEngineRoundTripValues(t *testing.T) {
	const n = 2000 // 跨越 Mersenne 的多個 twist 區塊邊界
	for _, tc := range engineCases() {
		seed := randomSeed(t)
		e := tc.make(seed)
		forward := make([]uint64, n)
		for i := range forward {
			forward[i] = e.Next()
		}
		for i := n - 1; i >= 0; i-- {
			if got := e.Previous(); got != forward[i] {
				t.Fatalf("[%s] previous mismatch at %d: got %d, want %d", tc.name, i, got, forward[i])
			}
		}
	}
}

func TestEngineRoundTripState(t *testing.T) {
	const n = 2000
	for _, tc := range engineCases() {
		// 分別從剛播種的狀態與區塊中段出發：前者覆蓋播種後第一筆
		// 輸出前的狀態，後者讓往返同時跨越 twist 與 untwist 邊界。
		for _, skip := range []uint64{0, 400} {
			seed := randomSeed(t)
			a := tc.make(seed)
			b := tc.make(seed)
			a.Discard(skip)
			b.Discard(skip)
			before := a.Encode()
			for i := 0; i < n; i++ {
				a.Next()
			}
			for i := 0; i < n; i++ {
				a.Previous()
			}
			if !a.Equal(b) {
				t.Fatalf("[%s/skip=%d] state not restored after %d next + %d previous", tc.name, skip, n, n)
			}
			if got := a.Encode(); got != before {
				t.Fatalf("[%s/skip=%d] snapshot not restored after round trip", tc.name, skip)
			}
			if a.Next() != b.Next() {
				t.Fatalf("[%s/skip=%d] restored engine diverges", tc.name, skip)
			}
		}
	}
}

func TestEngineRetreatThenAdvance(t *testing.T) {
	for _, tc := range engineCases() {
		seed := randomSeed(t)
		a := tc.make(seed)
		b := tc.make(seed)
		a.Discard(400)
		b.Discard(400)
		prev := a.Previous()
		next := a.Next()
		if prev != next {
			t.Fatalf("[%s] previous/next value mismatch: %d vs %d", tc.name, prev, next)
		}
		if !a.Equal(b) {
			t.Fatalf("[%s] state not restored by previous then next", tc.name)
		}
	}
}

// -----------------------------------------------------------------------------
// Discard / Seed / Encode
// -----------------------------------------------------------------------------

func TestEngineDiscardEquivalence(t *testing.T) {
	const n = 1_000_000
	for _, tc := range engineCases() {
		a := tc.make(DefaultSeed)
		b := tc.make(DefaultSeed)
		a.Discard(n)
		for i := 0; i < n; i++ {
			b.Next()
		}
		if !a.Equal(b) {
			t.Fatalf("[%s] discard(%d) differs from %d next calls", tc.name, n, n)
		}
		if a.Next() != b.Next() {
			t.Fatalf("[%s] outputs diverge after discard", tc.name)
		}
	}
}

func TestEngineSeedReset(t *testing.T) {
	for _, tc := range engineCases() {
		seed := randomSeed(t)
		a := tc.make(DefaultSeed)
		a.Discard(1_000_000)
		a.Seed(seed)
		b := tc.make(seed)
		if !a.Equal(b) {
			t.Fatalf("[%s] reseeded engine differs from freshly seeded one", tc.name)
		}
	}
}

func TestEngineEncodeDecodeRoundTrip(t *testing.T) {
	for _, tc := range engineCases() {
		a := tc.make(randomSeed(t))
		a.Discard(1_000_000)
		b := tc.make(0)
		if err := b.Decode(a.Encode()); err != nil {
			t.Fatalf("[%s] decode failed: %v", tc.name, err)
		}
		if !a.Equal(b) {
			t.Fatalf("[%s] decoded engine differs from original", tc.name)
		}
		if a.Next() != b.Next() {
			t.Fatalf("[%s] decoded engine diverges", tc.name)
		}
	}
}

func TestEngineDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"wrong tag", "mersenne 1 2"},
		{"truncated", "pcg32 77"},
		{"garbage field", "pcg32 abc 12"},
		{"trailing field", "pcg32 1 2 3"},
	}
	for _, tc := range cases {
		e := NewPCG32()
		if err := e.Decode(tc.text); err == nil {
			t.Errorf("expected decode error for %s input", tc.name)
		}
	}
}

func TestEngineCrossTypeEquality(t *testing.T) {
	if NewPCG64().Equal(NewPCG32()) {
		t.Fatalf("engines of different types must not compare equal")
	}
	if NewPCG64().Equal(NewPCG64CM()) {
		t.Fatalf("engines of different configurations must not compare equal")
	}
}

func TestPCGStreamSeeding(t *testing.T) {
	a := NewPCG32()
	b := NewPCG32()
	a.SeedStream(7, 1)
	b.SeedStream(7, 2)
	if a.Next() == b.Next() {
		t.Fatalf("different streams should diverge immediately")
	}
	b.SeedStream(7, 1)
	a.Seed(0)
	a.SeedStream(7, 1)
	if !a.Equal(b) {
		t.Fatalf("same stream and seed must produce equal engines")
	}

	assertPanic(t, func() { NewPCG64Fast().SeedStream(1, 2) }, "SeedStream on mcg configuration")
}

// -----------------------------------------------------------------------------
// 固定種子夾具（跨實作位元精確）
// -----------------------------------------------------------------------------

func checkFixture(t *testing.T, name string, e Engine, want []uint64) {
	t.Helper()
	got := make([]uint64, len(want))
	for i := range got {
		got[i] = e.Next()
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("[%s] output %d: got %d, want %d", name, i, got[i], want[i])
		}
	}
	// 同一批值必須能由 Previous 逐一走回
	for i := len(want) - 1; i >= 0; i-- {
		if got := e.Previous(); got != want[i] {
			t.Fatalf("[%s] previous %d: got %d, want %d", name, i, got, want[i])
		}
	}
}

func TestPCG64Seed42Fixture(t *testing.T) {
	checkFixture(t, "pcg64", NewPCG64Seeded(42), []uint64{
		2915081201720324186,
		13533757442135995717,
		13172715927431628928,
		13789878565430171748,
	})
}

func TestPCG64DefaultSeedFixture(t *testing.T) {
	checkFixture(t, "pcg64", NewPCG64(), []uint64{
		14951315693135216709,
		1541401459199960700,
		3670514919227316241,
		11007308355854268502,
	})
}

func TestPCG64CMSeed42Fixture(t *testing.T) {
	checkFixture(t, "pcg64cm", NewPCG64CMSeeded(42), []uint64{
		1685755214775974448,
		14606187461124928996,
		6431041275500520679,
		2518384178578964081,
	})
}

func TestPCG64FastSeed42Fixture(t *testing.T) {
	checkFixture(t, "pcg64fast", NewPCG64FastSeeded(42), []uint64{
		7184547247844913162,
		4046858236687002404,
		12104978356884820174,
		15498338131123926839,
	})
}

func TestPCG32Seed42Fixture(t *testing.T) {
	checkFixture(t, "pcg32", NewPCG32Seeded(42), []uint64{
		3270867926,
		1795671209,
		1924641435,
		1143034755,
	})
}

// TestMersenneBoundaryAlias 驗證 (B, 312) 與 (twist(B), 0) 這組邊界
// 別名在 Equal 與 Encode 下視為同一個狀態：走完一整個區塊再倒回，
// 停在別名的另一側，快照仍須與出發點一致。
func TestMersenneBoundaryAlias(t *testing.T) {
	a := NewMersenneSeeded(12345)
	b := NewMersenneSeeded(12345)
	before := a.Encode()
	for i := 0; i < mtStateSize; i++ {
		a.Next()
	}
	for i := 0; i < mtStateSize; i++ {
		a.Previous()
	}
	if !a.Equal(b) {
		t.Fatal("aliased boundary states not equal")
	}
	if a.Encode() != before {
		t.Fatal("snapshot differs across the boundary alias")
	}
	if a.Next() != b.Next() {
		t.Fatal("aliased states diverge on the next output")
	}
}

// TestMersenneDefaultFixture 與 std::mt19937_64 的預設序列一致。
func TestMersenneDefaultFixture(t *testing.T) {
	checkFixture(t, "mersenne", NewMersenne(), []uint64{
		14514284786278117030,
		4620546740167642908,
		13109570281517897720,
		17462938647148434322,
	})
}

func TestSplitMix64Fixture(t *testing.T) {
	sm := NewSplitMix64(1)
	if got := sm.Next(); got != 10451216379200822465 {
		t.Fatalf("splitmix64(1) first output: got %d", got)
	}
}

func TestXoshiro256Fixture(t *testing.T) {
	x := NewXoshiro256(1)
	want := []uint64{
		201453059313051084,
		16342930563397888806,
		2922809869868169223,
	}
	for i, w := range want {
		if got := x.Word(); got != w {
			t.Fatalf("xoshiro256+ output %d: got %d, want %d", i, got, w)
		}
	}
}

func TestXoshiro256EncodeDecode(t *testing.T) {
	a := NewXoshiro256(randomSeed(t))
	a.Discard(100)
	b := NewXoshiro256(0)
	if err := b.Decode(a.Encode()); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("decoded generator differs from original")
	}
	if a.Word() != b.Word() {
		t.Fatalf("decoded generator diverges")
	}
}

// -----------------------------------------------------------------------------
// 轉接器
// -----------------------------------------------------------------------------

func TestForwardReversedAdapters(t *testing.T) {
	e := NewPCG64Seeded(99)
	f := Forward{E: e}
	if f.Max() != math.MaxUint64 {
		t.Fatalf("forward adapter range mismatch")
	}
	v1 := f.Word()
	v2 := f.Word()
	r := Reversed{E: e}
	if got := r.Word(); got != v2 {
		t.Fatalf("reversed adapter: got %d, want %d", got, v2)
	}
	if got := r.Word(); got != v1 {
		t.Fatalf("reversed adapter: got %d, want %d", got, v1)
	}
}
