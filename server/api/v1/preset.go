package v1

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/revlab"
	"github.com/zintix-labs/revlab/errs"
	"github.com/zintix-labs/revlab/server/httperr"
)

const (
	maxSampleN    = 100000
	maxStreamWord = 1 << 28 // 每次請求最多 2^28 字組（1 GiB）
)

type PresetHandler struct {
	Lab *revlab.Lab
}

func NewPresetHandler(lab *revlab.Lab) *PresetHandler {
	return &PresetHandler{Lab: lab}
}

// Presets 回傳已註冊預設的摘要列表。
func (ph *PresetHandler) Presets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ph.Lab.Summaries())
}

// Sample 依預設取 n 筆樣本，回傳樣本與取樣前後的 RNG 快照。
// 呼叫端可以用 before 快照重播、用 after 快照接續取樣。
func (ph *PresetHandler) Sample(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SampleRequestBody struct {
		Preset string  `json:"preset"`
		N      int     `json:"n"`
		Seed   *uint64 `json:"seed,omitempty"`
	}
	type SampleResponse struct {
		Preset  string    `json:"preset"`
		Before  string    `json:"before"` // 取樣前快照
		After   string    `json:"after"`  // 取樣後快照
		Floats  []float64 `json:"floats,omitempty"`
		Ints    []int64   `json:"ints,omitempty"`
		IsInt   bool      `json:"is_int"`
		Samples int       `json:"samples"`
	}
	// ---
	req := new(SampleRequestBody)
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if q.Method == http.MethodGet {
		if s := q.URL.Query().Get("preset"); s != "" {
			req.Preset = s
		} else {
			httperr.Errs(w, errs.NewWarn("preset is required"))
			return
		}
		if n := q.URL.Query().Get("n"); n != "" {
			u, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("n must be integer"))
				return
			}
			req.N = int(u)
		} else {
			httperr.Errs(w, errs.NewWarn("n is required"))
			return
		}
		if s := q.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be uint64"))
				return
			}
			v := u
			req.Seed = &v
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
	}
	// 業務檢驗
	if req.N < 1 || req.N > maxSampleN {
		httperr.Errs(w, errs.NewWarn("n must be between 1 to 100,000"))
		return
	}
	rs, err := ph.Lab.Setting(req.Preset)
	if err != nil {
		httperr.Errs(w, errs.NewWarn("preset not found"))
		return
	}

	resp := &SampleResponse{Preset: req.Preset, IsInt: rs.IsInt(), Samples: req.N}
	if rs.IsInt() {
		rng, err := ph.Lab.NewIntRNG(req.Preset)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Seed != nil {
			rng.Seed(*req.Seed)
		}
		resp.Before = rng.Encode()
		resp.Ints = rng.NextN(req.N)
		resp.After = rng.Encode()
	} else {
		rng, err := ph.Lab.NewFloatRNG(req.Preset)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Seed != nil {
			rng.Seed(*req.Seed)
		}
		resp.Before = rng.Encode()
		resp.Floats = rng.NextN(req.N)
		resp.After = rng.Encode()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Stream 以 binary little-endian 輸出指定數量的 32 位元字組，
// 供統計測試批次直接串接（curl ... | RNG_test stdin32）。
func (ph *PresetHandler) Stream(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	preset := q.URL.Query().Get("preset")
	if preset == "" {
		httperr.Errs(w, errs.NewWarn("preset is required"))
		return
	}
	words := int64(1 << 20)
	if s := q.URL.Query().Get("words"); s != "" {
		u, err := strconv.ParseInt(s, 10, 64)
		if err != nil || u < 1 || u > maxStreamWord {
			httperr.Errs(w, errs.NewWarn("words out of range"))
			return
		}
		words = u
	}

	stream, err := ph.Lab.NewStream(preset)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.CopyN(w, stream, words*4); err != nil {
		// 連線被對端關閉是正常結束，不回寫錯誤
		return
	}
}
