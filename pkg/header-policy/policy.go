package headerpolicy

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	HeaderOpenerPolicy   = "Cross-Origin-Opener-Policy"
	HeaderEmbedderPolicy = "Cross-Origin-Embedder-Policy"
	HeaderCacheControl   = "Cache-Control"

	OpenerPolicy   = "same-origin"
	EmbedderPolicy = "credentialless"
	CacheNoStore   = "no-store, no-cache, must-revalidate"
)

// Apply sets the cross-origin isolation headers on h and,
// if the request target should not be cached, the no-store Cache-Control header.
// requestURI is the request target as received, i.e. path and optional query.
// Existing values are replaced, so every header is present exactly once.
func Apply(h http.Header, requestURI string) {
	h.Set(HeaderOpenerPolicy, OpenerPolicy)
	h.Set(HeaderEmbedderPolicy, EmbedderPolicy)
	if NoStore(requestURI) {
		log.Trace().Str("uri", requestURI).Msg("Setting no-store Cache-Control header")
		h.Set(HeaderCacheControl, CacheNoStore)
	}
}

// NoStore reports whether responses for requestURI must not be cached.
// This is true for HTML documents, the root, and extension-less routes.
// Note that a query string anywhere disqualifies only the extension-less case.
func NoStore(requestURI string) bool {
	if strings.HasSuffix(requestURI, ".html") || requestURI == "/" {
		return true
	}
	segment := requestURI[strings.LastIndex(requestURI, "/")+1:]
	return !strings.Contains(segment, ".") && !strings.Contains(requestURI, "?")
}

// HasNoStore reports whether the Cache-Control header(s) in h contain the no-store directive.
func HasNoStore(h http.Header) bool {
	return parseCacheControl(h.Values(HeaderCacheControl)).has("no-store")
}

type cacheControl struct {
	directives map[string]string
}

func (c cacheControl) get(directive string) (string, bool) {
	val, ok := c.directives[directive]
	return val, ok
}

func (c cacheControl) has(directive string) bool {
	_, ok := c.get(directive)
	return ok
}

// parseCacheControl takes Cache-Control header values and returns the directives.
// Directive names are compared case-insensitively, the last occurrence wins.
func parseCacheControl(headers []string) cacheControl {
	m := make(map[string]string)
	for _, header := range headers {
		for _, directive := range strings.Split(header, ",") {
			directive = strings.TrimSpace(directive)
			if directive == "" {
				continue
			}
			name, arg, _ := strings.Cut(directive, "=")
			m[strings.ToLower(name)] = strings.Trim(arg, "\"")
		}
	}
	return cacheControl{m}
}
