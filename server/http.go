package server

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/tls"
	"github.com/agrosud-co/site-service/types"
	"github.com/agrosud-co/site-service/utils"
)

type State int32

const (
	StateStopped State = iota
	StateRunning
)

// HTTPServer owns the fasthttp listener. Every request flows router →
// middleware chain → handler; unmatched paths get a JSON 404.
type HTTPServer struct {
	logger      types.Logger
	config      *types.ServerConfig
	router      *Router
	middlewares types.MiddlewareManager
	certManager *tls.CertManager
	server      *fasthttp.Server
	listener    net.Listener
	state       atomic.Int32
	done        chan struct{}
}

func NewHTTPServer(logger types.Logger, config *types.ServerConfig, router *Router, middlewares types.MiddlewareManager, certManager *tls.CertManager) *HTTPServer {
	s := &HTTPServer{
		logger:      logger,
		config:      config,
		router:      router,
		middlewares: middlewares,
		certManager: certManager,
		done:        make(chan struct{}),
	}

	s.server = &fasthttp.Server{
		Handler:      s.handleRequest,
		ReadTimeout:  time.Duration(config.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.HTTP.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(config.HTTP.IdleTimeout) * time.Second,
	}

	return s
}

func (s *HTTPServer) Start() error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return types.ErrServerAlreadyRunning
	}

	addr := fmt.Sprintf("%s:%d", s.config.HTTP.Host, s.config.HTTP.Port)

	var listener net.Listener
	var err error

	if s.config.TLS != nil && s.config.TLS.Enabled && s.certManager != nil {
		listener, err = s.certManager.Listen(addr)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		s.state.Store(int32(StateStopped))
		return types.WrapError(err, "listen")
	}

	s.listener = listener

	go func() {
		defer close(s.done)
		if serveErr := s.server.Serve(listener); serveErr != nil {
			if s.IsRunning() {
				s.logger.Error("HTTP server terminated unexpectedly", zap.Error(serveErr))
			}
		}
	}()

	s.logger.Info("HTTP server started",
		zap.String("addr", addr),
		zap.Bool("tls", s.config.TLS != nil && s.config.TLS.Enabled))
	return nil
}

func (s *HTTPServer) Stop() error {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		return types.ErrServerNotRunning
	}

	shutdownTimeout := time.Duration(s.config.HTTP.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	if err := s.server.Shutdown(); err != nil {
		return types.WrapError(err, "shutdown HTTP server")
	}

	select {
	case <-s.done:
	case <-time.After(shutdownTimeout):
		s.logger.Warn("HTTP server shutdown timed out")
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

func (s *HTTPServer) IsRunning() bool {
	return State(s.state.Load()) == StateRunning
}

func (s *HTTPServer) handleRequest(ctx *fasthttp.RequestCtx) {
	handler, config, params, found := s.router.Lookup(string(ctx.Method()), string(ctx.Path()))
	if !found {
		utils.CreateNotFoundResponse(ctx)
		return
	}

	for name, value := range params {
		ctx.SetUserValue(name, value)
	}

	if s.middlewares != nil {
		s.middlewares.Execute(ctx, handler, config)
		return
	}

	handler(ctx)
}
