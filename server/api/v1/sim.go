package v1

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"strconv"

	"github.com/zintix-labs/revlab"
	"github.com/zintix-labs/revlab/errs"
	"github.com/zintix-labs/revlab/server/httperr"
	"github.com/zintix-labs/revlab/stats"
)

type SimHandler struct {
	Lab     *revlab.Lab
	Workers int
}

func NewSimHandler(lab *revlab.Lab, workers int) *SimHandler {
	return &SimHandler{Lab: lab, Workers: workers}
}

// 內部結構 不影響外部 也不被外部使用
type simRequestBody struct {
	Preset string `json:"preset"`
	Round  int    `json:"round"`
	MP     int    `json:"mp"`
	Seed   *int64 `json:"seed,omitempty"`
}

type simResponse struct {
	Stats    *stats.MomentReport `json:"stats"`
	UsedTime int64               `json:"used_ms"`
}

func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	req, ok := sh.decodeSimRequest(w, q)
	if !ok {
		return
	}
	sim, err := sh.Lab.NewSimulatorWithSeed(req.Preset, *req.Seed)
	if err != nil {
		// 這裡的錯誤是來自組裝層 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %s", req.Preset)))
		return
	}
	st, used, err := sim.SimMP(req.Round, req.MP, false)
	if err != nil {
		// 這裡的錯誤來自simulator 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	resp := simResponse{
		Stats:    st,
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Verify 往返驗證：取 round 筆再全部倒回，回報值比對與引擎狀態是否復原。
func (sh *SimHandler) Verify(w http.ResponseWriter, q *http.Request) {
	req, ok := sh.decodeSimRequest(w, q)
	if !ok {
		return
	}
	sim, err := sh.Lab.NewSimulatorWithSeed(req.Preset, *req.Seed)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %s", req.Preset)))
		return
	}
	st, used, err := sim.VerifyMP(req.Round, req.MP, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "verify err"))
		return
	}
	resp := simResponse{
		Stats:    st,
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (sh *SimHandler) decodeSimRequest(w http.ResponseWriter, q *http.Request) (*simRequestBody, bool) {
	req := new(simRequestBody)
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	if q.Method == http.MethodGet {
		// preset
		if s := q.URL.Query().Get("preset"); s != "" {
			req.Preset = s
		} else {
			// 直接空值
			httperr.Errs(w, errs.NewWarn("preset is required"))
			return nil, false
		}

		// round
		if r := q.URL.Query().Get("round"); r != "" {
			u, err := strconv.ParseInt(r, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("round must be integer"))
				return nil, false
			}
			req.Round = int(u)
		} else {
			httperr.Errs(w, errs.NewWarn("round is required"))
			return nil, false
		}

		// mp
		if m := q.URL.Query().Get("mp"); m != "" {
			u, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("mp must be integer"))
				return nil, false
			}
			req.MP = int(u)
		}

		// seed
		if s := q.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be int64"))
				return nil, false
			}
			v := u
			req.Seed = &v
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return nil, false
		}
	}
	// 業務檢驗
	if _, err := sh.Lab.Setting(req.Preset); err != nil {
		httperr.Errs(w, errs.NewWarn("preset not found"))
		return nil, false
	}
	if req.Round < 1 || req.Round > 10000000 {
		httperr.Errs(w, errs.NewWarn("round must be between 1 to 10,000,000"))
		return nil, false
	}
	if req.MP == 0 {
		req.MP = 1
	}
	if req.MP < 1 || req.MP > sh.Workers {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("mp must be between 1 to %d", sh.Workers)))
		return nil, false
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return nil, false
		}
		v := rnd.Int64()
		req.Seed = &v
	}
	return req, true
}
