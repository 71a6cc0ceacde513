package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// Browser origins allowed when ROI_CORS_ALLOWED_ORIGINS is empty.
var devOrigins = []string{"http://localhost:3000", "http://localhost:8000"}

// CORS applies the browser origin policy. Headers the frontend reads
// (downloads, request ids, replays, rate-limit back-off) are exposed.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = devOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyKeyHeader, RequestIDHeader, "X-Razorpay-Signature"},
		ExposedHeaders:   []string{"Content-Disposition", RequestIDHeader, IdempotencyReplayedHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int((5 * time.Minute).Seconds()),
	})
}
