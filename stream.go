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

package revlab

import (
	"encoding/binary"

	"github.com/zintix-labs/revlab/sdk/engine"
)

// WordStream 把引擎輸出轉成無盡的 32 位元字組流，供外部統計測試
// 批次（PractRand、TestU01 等）透過 stdin 餵入。
//
// 64 位元引擎的輸出一律截取低 32 位元：測試批次吃的是固定寬度
// 的字組，截斷比拆半更不易引入位元間的相關性假象。
type WordStream struct {
	eng engine.Engine
	n   uint64
}

// NewWordStream 包裝一個已播種的引擎。引擎之後由字組流獨占持有。
func NewWordStream(e engine.Engine) *WordStream {
	if e == nil {
		panic("WordStream: engine is required")
	}
	return &WordStream{eng: e}
}

// Word 回傳下一個 32 位元字組。
func (s *WordStream) Word() uint32 {
	s.n++
	return uint32(s.eng.Next())
}

// Produced 回傳已輸出的字組數。
func (s *WordStream) Produced() uint64 { return s.n }

// Read 以 little-endian 填滿 p，實作 io.Reader；流沒有盡頭，
// 永遠回傳 len(p) 與 nil。長度不是 4 的倍數時，尾端殘餘位元組
// 取自下一個字組的低位。
func (s *WordStream) Read(p []byte) (int, error) {
	i := 0
	for ; i+4 <= len(p); i += 4 {
		binary.LittleEndian.PutUint32(p[i:], s.Word())
	}
	if i < len(p) {
		var tail [4]byte
		binary.LittleEndian.PutUint32(tail[:], s.Word())
		copy(p[i:], tail[:len(p)-i])
	}
	return len(p), nil
}
