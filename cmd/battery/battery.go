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

package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"

	"github.com/zintix-labs/revlab/demo"
)

// 把預設引擎的 32 位元字組以 little-endian 二進位寫到 stdout，
// 供外部統計測試批次直接串接：
//
//	go run ./cmd/battery -preset raw | RNG_test stdin32
//	go run ./cmd/battery -preset raw -words 16777216 | dieharder -a -g 200
func main() {
	var (
		preset string
		words  int64
	)
	flag.StringVar(&preset, "preset", "raw", "target preset name")
	flag.Int64Var(&words, "words", 0, "number of 32-bit words to emit, 0 = unbounded")
	flag.Parse()

	lab, err := demo.NewLab()
	if err != nil {
		log.Fatal(err)
	}
	stream, err := lab.NewStream(preset)
	if err != nil {
		log.Fatal(err)
	}

	w := bufio.NewWriterSize(os.Stdout, 1<<16)
	defer w.Flush()

	if words > 0 {
		if _, err := io.CopyN(w, stream, words*4); err != nil {
			log.Fatal(err)
		}
		return
	}
	// 無上限模式：寫到下游管線關閉為止
	io.Copy(w, stream)
}
