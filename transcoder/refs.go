package transcoder

import (
	"github.com/wippyai/wasm-hostcall/resource"
)

// RefTable maps externref handles to host objects. Intern must return the
// same handle for a value it already holds, so lowering one object many
// times does not grow the table. *resource.Table satisfies it.
type RefTable interface {
	Intern(value any) (resource.Handle, error)
	Get(handle resource.Handle) (any, bool)
}

var _ RefTable = (*resource.Table)(nil)
