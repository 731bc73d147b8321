package types

import (
	"time"
)

type HTTPCaller interface {
	Call(method, path string, data interface{}, opts *CallOptions) ([]byte, int, error)
	Close()
}

type CallOptions struct {
	Timeout time.Duration
	Retry   int
	Headers map[string]string
}
