package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// CompressionConfig controls response compression.
type CompressionConfig struct {
	Level        int
	ExcludePaths []string
}

// DefaultCompressionConfig skips /metrics, which compresses itself.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		Level:        gzip.DefaultCompression,
		ExcludePaths: []string{"/metrics"},
	}
}

type gzipWriter struct {
	gin.ResponseWriter
	writer  *gzip.Writer
	written bool
}

func (g *gzipWriter) WriteHeader(code int) {
	g.Header().Del("Content-Length")
	g.ResponseWriter.WriteHeader(code)
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	if !g.written {
		g.Header().Set("Content-Encoding", "gzip")
		g.Header().Del("Content-Length")
		g.written = true
	}
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

func (g *gzipWriter) Flush() {
	_ = g.writer.Flush()
	g.ResponseWriter.Flush()
}

// Compress gzips responses for clients that accept it. WebSocket upgrades
// and excluded path prefixes pass through untouched.
func Compress(cfg CompressionConfig) gin.HandlerFunc {
	level := cfg.Level
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	pool := sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, level)
		return w
	}}

	return func(c *gin.Context) {
		if !shouldCompress(c.Request, cfg.ExcludePaths) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)
		w := &gzipWriter{ResponseWriter: c.Writer, writer: gz}

		c.Header("Vary", "Accept-Encoding")
		c.Writer = w

		defer func() {
			if !w.written {
				gz.Reset(io.Discard)
			}
			_ = gz.Close()
			pool.Put(gz)
		}()

		c.Next()
	}
}

func shouldCompress(r *http.Request, exclude []string) bool {
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		return false
	}
	if strings.EqualFold(r.Header.Get("Connection"), "upgrade") || r.Header.Get("Upgrade") != "" {
		return false
	}
	for _, p := range exclude {
		if strings.HasPrefix(r.URL.Path, p) {
			return false
		}
	}
	return true
}
