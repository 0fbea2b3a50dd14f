package middleware

import "net/http"

// Middleware is the common chaining signature for HTTP middleware:
// a function that wraps an http.Handler with extra behaviour before
// or after delegating to the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// CreateStack composes a variadic number of Middleware functions into a
// single Middleware. The middleware listed first becomes the outermost
// wrapper (executes first), the one listed last runs just before the
// final handler.
func CreateStack(xs ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(xs) - 1; i >= 0; i-- {
			x := xs[i]
			next = x(next)
		}
		return next
	}
}
