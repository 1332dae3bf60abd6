package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Recover answers 500 when a handler panics. onPanic, when set, is called
// with the recovered value after the response is written.
func Recover(onPanic func(r *http.Request, recovered any)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				fields := log.Fields{
					"path":  r.URL.Path,
					"panic": fmt.Sprint(recovered),
					"stack": string(debug.Stack()),
				}
				if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
					fields["request_id"] = info.ID
					if info.TenantID != "" {
						fields["tenant_id"] = info.TenantID
					}
				}
				log.WithFields(fields).Error("Recovered from panic")

				writeError(w, http.StatusInternalServerError, "Something went wrong")
				if onPanic != nil {
					onPanic(r, recovered)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
