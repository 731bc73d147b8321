package server

import (
	"strings"
	"sync"

	"github.com/agrosud-co/site-service/types"
)

type route struct {
	method   string
	segments []string
	handler  types.FastHTTPHandler
	config   *types.RouteConfig
}

// Router matches fixed segments and {name} parameters. The route table
// is tiny and set up once at startup, so a linear scan is fine.
type Router struct {
	mu     sync.RWMutex
	routes []route
}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Add(method, path string, handler types.FastHTTPHandler, config *types.RouteConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(path),
		handler:  handler,
		config:   config,
	})
}

func (r *Router) GET(path string, handler types.FastHTTPHandler, config *types.RouteConfig) {
	r.Add("GET", path, handler, config)
}

func (r *Router) POST(path string, handler types.FastHTTPHandler, config *types.RouteConfig) {
	r.Add("POST", path, handler, config)
}

func (r *Router) Lookup(method, path string) (types.FastHTTPHandler, *types.RouteConfig, map[string]string, bool) {
	segments := splitPath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, candidate := range r.routes {
		if candidate.method != method {
			continue
		}
		params, ok := matchSegments(candidate.segments, segments)
		if !ok {
			continue
		}
		return candidate.handler, candidate.config, params, true
	}

	return nil, nil, nil, false
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchSegments(pattern, actual []string) (map[string]string, bool) {
	if len(pattern) != len(actual) {
		return nil, false
	}

	var params map[string]string
	for i, segment := range pattern {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			if actual[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[segment[1:len(segment)-1]] = actual[i]
			continue
		}
		if segment != actual[i] {
			return nil, false
		}
	}

	return params, true
}
