package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// MomentReport 取樣統計報告
//
// 由 recorder 累積原始和之後產生；Done() 會把累積值換算成
// 最終統計量並與理論動差比對。
type MomentReport struct {
	Summary *SummaryReport `json:"Summary"`
	Moment  *MomentDetail  `json:"Moment"`
	Hist    *HistReport    `json:"Hist,omitzero"`
	Reverse *ReverseReport `json:"Reverse,omitzero"`
	isDone  bool
}

type SummaryReport struct {
	Preset     string  `json:"Preset"`
	Engine     string  `json:"Engine"`
	Dist       string  `json:"Dist"`
	Rounds     int     `json:"Rounds"`
	Mean       float64 `json:"Mean"`
	MeanCI     CI      `json:"MeanCI"`
	Std        float64 `json:"Std"`
	TheoryMean float64 `json:"TheoryMean"`
	TheoryStd  float64 `json:"TheoryStd"`
	ZScore     float64 `json:"ZScore"`
}

// MomentDetail 原始累積值
//
// 紀錄時只累積和與平方和，避免每筆換算成本。紀錄完成後 Done() 會將
// 結果整理填入 Summary。
type MomentDetail struct {
	Sum        float64 `json:"Sum"`
	SqSum      float64 `json:"SqSum"` // 平方和
	Min        float64 `json:"Min"`
	Max        float64 `json:"Max"`
	Skew       float64 `json:"Skew"`
	ExKurtosis float64 `json:"ExKurtosis"`
}

// HistReport 樣本落點分桶統計
type HistReport struct {
	Labels    []string  `json:"Labels"`
	Counts    []int     `json:"Counts"`
	Freq      []float64 `json:"Freq"`
	Expected  []float64 `json:"Expected"`
	ChiSquare float64   `json:"ChiSquare"`
	PValue    float64   `json:"PValue"`
}

// ReverseReport 往返驗證結果
//
// 需使用 Simulator 的往返模式才會統計。
type ReverseReport struct {
	Forward       int  `json:"Forward"`
	Backward      int  `json:"Backward"`
	Mismatches    int  `json:"Mismatches"`
	StateRestored bool `json:"StateRestored"`
	Pass          bool `json:"Pass"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有取樣過程因為性能原因只累積和／平方和，統計完成後
//
// 請使用 Done 來通知報告累積已經完成，可以一次性計算統計結果
func (s *MomentReport) Done() {
	if s.isDone {
		return
	}
	// Summary
	s.Summary.Mean = s.Mean()
	s.Summary.Std = s.Std()
	s.Summary.MeanCI = s.Ci()
	s.Summary.ZScore = s.Z()

	// Reverse
	if s.Reverse != nil {
		s.Reverse.Pass = s.Reverse.Mismatches == 0 && s.Reverse.StateRestored
	}

	s.isDone = true
}

// Mean 回傳樣本平均
func (s *MomentReport) Mean() float64 {
	if s.Summary.Rounds == 0 {
		return 0
	}
	return s.Moment.Sum / float64(s.Summary.Rounds)
}

// Std 回傳樣本標準差（n−1 修正）
func (s *MomentReport) Std() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	variance := (s.Moment.SqSum - s.Moment.Sum*s.Moment.Sum/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Ci 回傳樣本平均的 95% 信賴區間
func (s *MomentReport) Ci() CI {
	mean := s.Mean()
	std := s.Std()
	se := float64(0)
	if s.Summary.Rounds > 1 {
		se = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: mean - 1.96*se,
		Hi: mean + 1.96*se,
	}
}

// Z 回傳樣本平均對理論平均的 z 分數（以理論標準誤為基準）
func (s *MomentReport) Z() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TheoryStd <= 0 {
		return 0
	}
	se := s.Summary.TheoryStd / math.Sqrt(float64(s.Summary.Rounds))
	return (s.Mean() - s.Summary.TheoryMean) / se
}

func (s *MomentReport) WriteWith(w io.Writer, rep MomentReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *MomentReport) StdOut(ut time.Duration) {
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.Preset, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, samples int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(samples) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d samples/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\nsps : %d samples/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d samples/sec\n", h, m, s, sps)
}

// StdOut

func (s *MomentReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Preset":      p.Sprintf("%s", s.Summary.Preset),
		"Engine":      p.Sprintf("%s", s.Summary.Engine),
		"Dist":        p.Sprintf("%s", s.Summary.Dist),
		"Samples":     p.Sprintf("%d", s.Summary.Rounds),
		"Mean":        p.Sprintf("%.6f", s.Summary.Mean),
		"Mean 95% CI": p.Sprintf("[%.6f,%.6f]", s.Summary.MeanCI.Lo, s.Summary.MeanCI.Hi),
		"STD":         p.Sprintf("%.6f", s.Summary.Std),
		"Theory Mean": p.Sprintf("%.6f", s.Summary.TheoryMean),
		"Theory STD":  p.Sprintf("%.6f", s.Summary.TheoryStd),
		"Z Score":     p.Sprintf("%.3f", s.Summary.ZScore),
		"Min":         p.Sprintf("%.6f", s.Moment.Min),
		"Max":         p.Sprintf("%.6f", s.Moment.Max),
	}
	keys := []string{"Preset", "Engine", "Dist", "Samples", "Mean", "Mean 95% CI", "STD", "Theory Mean", "Theory STD", "Z Score", "Min", "Max"}
	if s.Reverse != nil {
		basic["Reversed"] = p.Sprintf("%d", s.Reverse.Backward)
		basic["Mismatch"] = p.Sprintf("%d", s.Reverse.Mismatches)
		basic["Reverse OK"] = p.Sprintf("%t", s.Reverse.Pass)
		keys = append(keys, "Reversed", "Mismatch", "Reverse OK")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
