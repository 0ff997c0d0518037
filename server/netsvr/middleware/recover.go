package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// Recover 把 handler panic 轉成 500，避免單一請求拖垮整個服務。
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}
