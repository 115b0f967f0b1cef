package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/echi/timecapsule/internal/common"
)

// withCronAuth guards the sweep trigger with the shared cron secret. A
// missing or mismatched secret is rejected before any store access (fail
// closed). Comparison is constant-time.
func (a *API) withCronAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(a.cronSecret)) != 1 {
			a.logger.Warn(r.Context(), "sweep trigger rejected: invalid credential")
			respondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
