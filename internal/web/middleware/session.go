package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/platform/observability"
	"github.com/akira3175/fashionshop/internal/web/session"
)

// Session loads the storefront session and writes the cookie back just before the
// first byte of the response, so handlers may mutate it until they start writing.
func Session(manager *session.Manager) func(http.Handler) http.Handler {
	if manager == nil {
		panic("session manager is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := manager.Load(r)
			rw := newBeforeWriteRecorder(w, func(w http.ResponseWriter) {
				if err := manager.Save(w, sess); err != nil {
					observability.FromContext(r.Context()).Warn("session save failed", zap.Error(err))
				}
			})
			ctx := WithSession(r.Context(), sess)
			ctx = observability.WithLogger(ctx, observability.FromContext(ctx).With(zap.String("profile_id", sess.ProfileID())))
			next.ServeHTTP(rw, r.WithContext(ctx))
			rw.flushHook()
		})
	}
}
