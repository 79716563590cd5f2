package main

import (
	"fmt"
	"io"
	"time"
)

// envHost is the built-in "env" module available to every guest.
type envHost struct {
	out   io.Writer
	start time.Time
}

func newEnvHost(out io.Writer) *envHost {
	return &envHost{out: out, start: time.Now()}
}

func (h *envHost) Namespace() string { return "env" }

func (h *envHost) PrintI32(v int32) { fmt.Fprintln(h.out, v) }

func (h *envHost) PrintI64(v int64) { fmt.Fprintln(h.out, v) }

func (h *envHost) PrintF32(v float32) { fmt.Fprintln(h.out, v) }

func (h *envHost) PrintF64(v float64) { fmt.Fprintln(h.out, v) }

// PrintRef prints an externref. Null prints as "null".
func (h *envHost) PrintRef(v any) {
	if v == nil {
		fmt.Fprintln(h.out, "null")
		return
	}
	fmt.Fprintf(h.out, "%v\n", v)
}

// NowMs returns milliseconds since the host was created.
func (h *envHost) NowMs() int64 {
	return time.Since(h.start).Milliseconds()
}
