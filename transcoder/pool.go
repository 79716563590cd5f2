package transcoder

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCap64  = 1024 // max uint64 elements
	poolInitCap64 = 16
)

// call stack pool for host-initiated calls
var stackPool = sync.Pool{
	New: func() any {
		buf := make([]uint64, 0, poolInitCap64)
		return &buf
	},
}

// AcquireStack returns a zeroed raw value stack of length n.
// Release it with ReleaseStack once the results have been lifted.
func AcquireStack(n int) *[]uint64 {
	buf := stackPool.Get().(*[]uint64)
	if cap(*buf) < n {
		*buf = make([]uint64, n)
		return buf
	}
	*buf = (*buf)[:n]
	clear(*buf)
	return buf
}

func ReleaseStack(buf *[]uint64) {
	if buf == nil || cap(*buf) > poolMaxCap64 {
		return // reject oversized
	}
	*buf = (*buf)[:0]
	stackPool.Put(buf)
}
