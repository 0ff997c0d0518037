package index

import (
	"fmt"
	"net/http"
)

// IndexHandlerFn 主頁：列出可用端點（人眼檢查用，不屬於 API 合約）。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "revlab — reversible RNG service")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "GET  /v1/presets                         list registered presets")
	fmt.Fprintln(w, "GET  /v1/sample?preset=&n=&seed=         draw samples from a preset")
	fmt.Fprintln(w, "GET  /v1/stream?preset=&words=           raw 32-bit word stream (binary)")
	fmt.Fprintln(w, "GET  /v1/sim?preset=&round=&mp=&seed=    sample and report moments")
	fmt.Fprintln(w, "GET  /v1/verify?preset=&round=&mp=&seed= round-trip reversibility check")
	fmt.Fprintln(w, "POST /v1/simbycfg                        simulate an inline JSON config")
}
