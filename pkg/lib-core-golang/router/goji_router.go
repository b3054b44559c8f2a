package router

import (
	"net/http"

	"goji.io"
	"goji.io/middleware"
	"goji.io/pat"
)

type gojiRouter struct {
	mux *goji.Mux
}

func (g *gojiRouter) Handle(method string, pattern string, handler http.Handler) {
	g.mux.Handle(pat.NewWithMethods(pattern, method), handler)
}

func (g *gojiRouter) Use(mw MiddlewareFunc) {
	g.mux.Use(func(h http.Handler) http.Handler { return mw(h) })
}

func (g *gojiRouter) pathParam(r *http.Request, name string) string {
	return pat.Param(r, name)
}

func (g *gojiRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mux.ServeHTTP(w, r)
}

// notFoundMiddleware responds with a JSON error if no route matched.
// Goji resolves the route before running middlewares
func notFoundMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.Handler(r.Context()) == nil {
			ResourceNotFoundError("Route not found: " + r.Method + " " + r.URL.Path).(HTTPError).Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func createGojiRouter() *gojiRouter {
	mux := goji.NewMux()
	mux.Use(notFoundMiddleware)
	return &gojiRouter{mux: mux}
}
