package coiserve

import (
	"net/http"
	"strings"

	headerpolicy "github.com/ericselin/coiserve/pkg/header-policy"
	hook "github.com/ericselin/coiserve/pkg/response-writer-hook"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware applies the header policy to every response of next.
// The headers are added once the wrapped handler starts its response,
// so they end up on error responses and redirects as well.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestURI := requestTarget(r)
		hw := hook.NewResponseWriter(w, func(h http.Header) {
			headerpolicy.Apply(h, requestURI)
		})
		next.ServeHTTP(hw, r)
		// net/http would send an implicit 200, make sure it goes through the hook
		if hw.StatusCode() == 0 {
			hw.WriteHeader(http.StatusOK)
		}
	})
}

// requestTarget returns the request target as sent by the client.
// Requests created in tests or by other handlers may not have RequestURI set.
func requestTarget(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("url", requestTarget(r)).
			Str("sourceIp", getRequestSourceIp(r)).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Bool("noStore", headerpolicy.HasNoStore(ww.Header())).
			Msg("Sent response to client")
	})
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	return ipAndPort[:portSepIdx]
}
