// Package middleware contains the request pipeline: an ordered list of
// stages composed once at startup, each wrapping everything after it.
//
// A stage sees the request, decides whether to call next, and may act after
// next returns:
//
//	func (s myStage) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
//	    // before
//	    next.ServeHTTP(w, r) // omit to short-circuit
//	    // after
//	}
//
// Chain(Recover, Observe, Authenticate) produces the nesting
// Recover(Observe(Authenticate(handler))).
package middleware

import "net/http"

// Stage is one step of the pipeline.
type Stage interface {
	Handle(w http.ResponseWriter, r *http.Request, next http.Handler)
}

// StageFunc adapts a plain function to Stage.
type StageFunc func(w http.ResponseWriter, r *http.Request, next http.Handler)

func (f StageFunc) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	f(w, r, next)
}

// Chain composes stages into a router middleware. The first stage is the
// outermost; the final handler runs innermost.
func Chain(stages ...Stage) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		h := final
		for i := len(stages) - 1; i >= 0; i-- {
			h = bind(stages[i], h)
		}
		return h
	}
}

func bind(s Stage, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Handle(w, r, next)
	})
}
