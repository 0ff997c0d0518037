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

package recorder

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/revlab/corefmt"
	"github.com/zintix-labs/revlab/errs"
)

// 取樣重播紀錄：zstd 壓縮串流，內容為一行文字標頭加上
// little-endian 的 float64 樣本序列。標頭格式：
//
//	revlab-run <preset> <base64(engine snapshot)>
//
// 引擎快照是取樣「開始前」的狀態：重播端可以用它重建引擎，
// 把紀錄內容當作期望值逐一比對。
const runMagic = "revlab-run"

// RunWriter 把一段取樣過程寫成可重播的紀錄。
type RunWriter struct {
	zw  *zstd.Encoder
	buf [8]byte
	n   int
}

// NewRunWriter 開啟一個紀錄串流並寫入標頭。
func NewRunWriter(w io.Writer, preset string, engineSnapshot string) (*RunWriter, error) {
	if preset == "" || strings.ContainsAny(preset, " \n") {
		return nil, errs.NewFatal("run log preset must be a non-empty token")
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, errs.Wrap(err, "can not create zstd writer")
	}
	header := runMagic + " " + preset + " " + corefmt.EncodeBase64([]byte(engineSnapshot)) + "\n"
	if _, err := io.WriteString(zw, header); err != nil {
		zw.Close()
		return nil, errs.Wrap(err, "run log header write failed")
	}
	return &RunWriter{zw: zw}, nil
}

// WriteSample 追加一個樣本。
func (w *RunWriter) WriteSample(v float64) error {
	binary.LittleEndian.PutUint64(w.buf[:], math.Float64bits(v))
	if _, err := w.zw.Write(w.buf[:]); err != nil {
		return errs.Wrap(err, "run log sample write failed")
	}
	w.n++
	return nil
}

// Count 回傳已寫入的樣本數。
func (w *RunWriter) Count() int { return w.n }

// Close 結束壓縮串流。呼叫端負責關閉底層 writer。
func (w *RunWriter) Close() error {
	if err := w.zw.Close(); err != nil {
		return errs.Wrap(err, "run log close failed")
	}
	return nil
}

// RunReader 讀回 RunWriter 產生的紀錄。
type RunReader struct {
	zr       *zstd.Decoder
	br       *bufio.Reader
	preset   string
	snapshot string
}

// OpenRunReader 開啟紀錄串流並解析標頭。
func OpenRunReader(r io.Reader) (*RunReader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errs.Wrap(err, "can not create zstd reader")
	}
	br := bufio.NewReader(zr)
	line, err := br.ReadString('\n')
	if err != nil {
		zr.Close()
		return nil, errs.Wrap(err, "run log header read failed")
	}
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != runMagic {
		zr.Close()
		return nil, errs.NewWarn("run log header malformed")
	}
	raw, err := corefmt.DecodeBase64(fields[2])
	if err != nil {
		zr.Close()
		return nil, err
	}
	return &RunReader{
		zr:       zr,
		br:       br,
		preset:   fields[1],
		snapshot: string(raw),
	}, nil
}

// Preset 回傳紀錄所屬的預設名稱。
func (r *RunReader) Preset() string { return r.preset }

// EngineSnapshot 回傳取樣開始前的引擎狀態快照。
func (r *RunReader) EngineSnapshot() string { return r.snapshot }

// ReadSample 讀出下一個樣本；紀錄結尾回傳 io.EOF。
func (r *RunReader) ReadSample() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.br, buf[:]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, errs.Wrap(err, "run log sample read failed")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// ReadAll 讀出全部剩餘樣本。
func (r *RunReader) ReadAll() ([]float64, error) {
	out := make([]float64, 0, 1024)
	for {
		v, err := r.ReadSample()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// Close 釋放解壓資源。
func (r *RunReader) Close() {
	r.zr.Close()
}
