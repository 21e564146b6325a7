package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
)

// FaultBody is the plain-text body sent for unrecovered faults. It is
// deliberately not the JSON error envelope.
const FaultBody = "Internal Server Error"

// Recover returns the fault-isolation stage. It must be the outermost stage.
//
// A panic anywhere downstream is stopped here: one Error record is logged with
// the panic's origin and message, and the client gets a 500 with FaultBody.
// If the handler had already started the response, the status can no longer
// change, so only the record is emitted.
func Recover(logger *slog.Logger) Stage {
	return StageFunc(func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		tracked := newResponseWriter(w)

		defer func() {
			p := recover()
			if p == nil {
				return
			}

			// http.ErrAbortHandler is an intentional abort, not a fault.
			if p == http.ErrAbortHandler {
				logger.DebugContext(r.Context(), "request aborted",
					slog.String("method", r.Method),
					slog.String("uri", r.URL.RequestURI()),
				)
				if !tracked.wroteHeader {
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}

			logger.ErrorContext(r.Context(), "recovered from fault",
				slog.String("origin", panicOrigin()),
				slog.String("panic", fmt.Sprint(p)),
				slog.String("method", r.Method),
				slog.String("uri", r.URL.RequestURI()),
			)

			if tracked.wroteHeader {
				return
			}
			h := w.Header()
			h.Del("Content-Length")
			h.Set("Content-Type", "text/plain; charset=utf-8")
			h.Set("X-Content-Type-Options", "nosniff")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, FaultBody)
		}()

		next.ServeHTTP(tracked, r)
	})
}

// panicOrigin walks the panicking goroutine's stack from inside the deferred
// recover and reports the first non-runtime frame below runtime.gopanic.
func panicOrigin() string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	sawPanic := false
	for {
		f, more := frames.Next()
		if sawPanic && !isRuntimeFrame(f.Function) {
			return fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function)
		}
		if f.Function == "runtime.gopanic" {
			sawPanic = true
		}
		if !more {
			return "unknown"
		}
	}
}

func isRuntimeFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") || strings.HasPrefix(fn, "internal/runtime/")
}
