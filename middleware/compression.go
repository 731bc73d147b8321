package middleware

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

const (
	AlgorithmGzip    = "gzip"
	AlgorithmDeflate = "deflate"
	AlgorithmBrotli  = "br"

	compressionLevel     = 6
	compressionThreshold = 1024
)

// CompressionMiddleware negotiates br > gzip > deflate from
// Accept-Encoding and compresses text-like bodies above the threshold.
type CompressionMiddleware struct {
	logger           types.Logger
	name             string
	weight           int
	gzipWriterPool   sync.Pool
	flateWriterPool  sync.Pool
	brotliWriterPool sync.Pool
}

func NewCompressionMiddleware(logger types.Logger, weight int) *CompressionMiddleware {
	return &CompressionMiddleware{
		logger: logger,
		name:   "compression",
		weight: weight,
		gzipWriterPool: sync.Pool{
			New: func() interface{} {
				w, _ := gzip.NewWriterLevel(nil, compressionLevel)
				return w
			},
		},
		flateWriterPool: sync.Pool{
			New: func() interface{} {
				w, _ := flate.NewWriter(nil, compressionLevel)
				return w
			},
		},
		brotliWriterPool: sync.Pool{
			New: func() interface{} {
				return brotli.NewWriterLevel(nil, compressionLevel)
			},
		},
	}
}

func (m *CompressionMiddleware) Handle(ctx *fasthttp.RequestCtx, next types.FastHTTPHandler, config *types.RouteConfig) {
	next(ctx)

	body := ctx.Response.Body()
	if len(body) < compressionThreshold {
		return
	}
	if len(ctx.Response.Header.Peek(fasthttp.HeaderContentEncoding)) > 0 {
		return
	}
	if !compressibleContentType(string(ctx.Response.Header.ContentType())) {
		return
	}

	algorithm := negotiateAlgorithm(string(ctx.Request.Header.Peek(fasthttp.HeaderAcceptEncoding)))
	if algorithm == "" {
		return
	}

	compressed, err := m.compress(algorithm, body)
	if err != nil {
		m.logger.Warn("Compression failed, serving identity",
			zap.String("algorithm", algorithm),
			zap.Error(err))
		return
	}
	if len(compressed) >= len(body) {
		return
	}

	ctx.Response.Header.Set(fasthttp.HeaderContentEncoding, algorithm)
	ctx.Response.Header.Add(fasthttp.HeaderVary, fasthttp.HeaderAcceptEncoding)
	ctx.Response.SetBody(compressed)
}

func (m *CompressionMiddleware) compress(algorithm string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(body) / 2)

	switch algorithm {
	case AlgorithmBrotli:
		w := m.brotliWriterPool.Get().(*brotli.Writer)
		defer m.brotliWriterPool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case AlgorithmGzip:
		w := m.gzipWriterPool.Get().(*gzip.Writer)
		defer m.gzipWriterPool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case AlgorithmDeflate:
		w := m.flateWriterPool.Get().(*flate.Writer)
		defer m.flateWriterPool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func negotiateAlgorithm(acceptEncoding string) string {
	if acceptEncoding == "" {
		return ""
	}
	if strings.Contains(acceptEncoding, AlgorithmBrotli) {
		return AlgorithmBrotli
	}
	if strings.Contains(acceptEncoding, AlgorithmGzip) {
		return AlgorithmGzip
	}
	if strings.Contains(acceptEncoding, AlgorithmDeflate) {
		return AlgorithmDeflate
	}
	return ""
}

func compressibleContentType(contentType string) bool {
	switch {
	case strings.HasPrefix(contentType, "application/json"),
		strings.HasPrefix(contentType, "text/"),
		strings.HasPrefix(contentType, "application/javascript"),
		strings.HasPrefix(contentType, "application/xml"):
		return true
	default:
		return false
	}
}

func (m *CompressionMiddleware) Name() string {
	return m.name
}

func (m *CompressionMiddleware) Weight() int {
	return m.weight
}
