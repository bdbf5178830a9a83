package router

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

type HandlerFunc func(http.ResponseWriter, *http.Request)

// Observer is told about every served request, e.g. to count it
type Observer func(method string, status int, duration time.Duration)

type route struct {
	method   string
	pattern  string
	segments []string
	handler  HandlerFunc
}

type Router struct {
	routes   map[string]HandlerFunc // key = METHOD:PATH, exact paths only
	paths    map[string]bool        // exact paths, any method
	patterns []route                // wildcard routes in registration order
	logger   *logrus.Logger
	observer Observer
}

func New(logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Router{
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
		logger: logger,
	}
}

// Observe installs a hook called after every request
func (r *Router) Observe(o Observer) {
	r.observer = o
}

type paramsKey struct{}

// Params returns the path segments matched by the route's wildcards, in order.
// A trailing "/*" contributes the whole remaining path as one value.
func Params(req *http.Request) []string {
	params, _ := req.Context().Value(paramsKey{}).([]string)
	return params
}

// Param returns the i-th wildcard value, or "" when there is none
func Param(req *http.Request, i int) string {
	params := Params(req)
	if i < 0 || i >= len(params) {
		return ""
	}
	return params[i]
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request
func RequestID(req *http.Request) string {
	id, _ := req.Context().Value(requestIDKey{}).(string)
	return id
}

// ServeHTTP dispatches to the first matching route: exact paths before
// wildcard patterns, wildcard patterns in the order they were registered.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	lrw.Header().Set(RequestIDHeader, requestID)
	ctx := context.WithValue(req.Context(), requestIDKey{}, requestID)
	req = req.WithContext(ctx)

	r.dispatch(lrw, req)

	duration := time.Since(start)
	entry := r.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     req.Method,
		"path":       req.URL.Path,
		"status":     lrw.statusCode,
		"duration":   duration.String(),
	})
	switch {
	case lrw.statusCode >= 500:
		entry.Error("Request failed")
	case lrw.statusCode >= 400:
		entry.Warn("Request rejected")
	default:
		entry.Info("Request served")
	}
	if r.observer != nil {
		r.observer(req.Method, lrw.statusCode, duration)
	}
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	key := req.Method + ":" + req.URL.Path
	if h, ok := r.routes[key]; ok {
		h(w, req)
		return
	}

	allowed := map[string]bool{}
	if r.paths[req.URL.Path] {
		for k := range r.routes {
			if method, path, _ := strings.Cut(k, ":"); path == req.URL.Path {
				allowed[method] = true
			}
		}
	}

	requestSegments := splitPath(req.URL.Path)
	for _, rt := range r.patterns {
		params, ok := matchWildcardRoute(requestSegments, rt.segments)
		if !ok {
			continue
		}
		if rt.method != req.Method {
			allowed[rt.method] = true
			continue
		}
		rt.handler(w, req.WithContext(context.WithValue(req.Context(), paramsKey{}, params)))
		return
	}

	if len(allowed) > 0 {
		methods := make([]string, 0, len(allowed))
		for m := range allowed {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		w.Header().Set("Allow", strings.Join(methods, ", "))
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}

// matchWildcardRoute checks a request path against a route pattern and returns the wildcard values
func matchWildcardRoute(requestSegments, routeSegments []string) ([]string, bool) {
	var params []string

	// Trailing wildcard matches one or more remaining segments
	if n := len(routeSegments); n > 0 && routeSegments[n-1] == "*" {
		if len(requestSegments) < n {
			return nil, false
		}
		for i := 0; i < n-1; i++ {
			if routeSegments[i] == "*" {
				params = append(params, requestSegments[i])
			} else if requestSegments[i] != routeSegments[i] {
				return nil, false
			}
		}
		return append(params, strings.Join(requestSegments[n-1:], "/")), true
	}

	if len(requestSegments) != len(routeSegments) {
		return nil, false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment == "*" {
			params = append(params, requestSegments[i])
			continue
		}
		if requestSegments[i] != routeSegment {
			return nil, false
		}
	}
	return params, true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	if strings.Contains(path, "*") {
		r.patterns = append(r.patterns, route{
			method:   method,
			pattern:  path,
			segments: splitPath(path),
			handler:  handler,
		})
		return
	}
	r.routes[method+":"+path] = handler
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)   { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)  { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)   { r.register(http.MethodPut, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc) { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// Handle mounts an http.Handler for GET requests
func (r *Router) Handle(path string, h http.Handler) {
	r.GET(path, h.ServeHTTP)
}

// Routes lists the registered routes as METHOD:PATH in registration order for patterns
func (r *Router) Routes() []string {
	keys := make([]string, 0, len(r.routes)+len(r.patterns))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, rt := range r.patterns {
		keys = append(keys, rt.method+":"+rt.pattern)
	}
	return keys
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	wrote      bool
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if !lrw.wrote {
		lrw.statusCode = code
		lrw.wrote = true
	}
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	lrw.wrote = true
	return lrw.ResponseWriter.Write(b)
}

// Flush lets streaming handlers push partial responses
func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
