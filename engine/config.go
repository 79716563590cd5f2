package engine

import (
	"github.com/go-playground/validator/v10"

	"github.com/wippyai/wasm-hostcall/errors"
)

// MaxMemoryPages is the largest memory a 32-bit instance can address.
const MaxMemoryPages = 65536

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32 `yaml:"memory_limit_pages" validate:"lte=65536"`

	// CloseOnContextDone interrupts running guest code when the call's
	// context is canceled or times out. The call then fails with a
	// *sys.ExitError and the instance is closed.
	CloseOnContextDone bool `yaml:"close_on_context_done"`

	// EnableThreads enables the WebAssembly threads proposal (experimental).
	// Thread operations are guest-only and not exposed to host functions.
	EnableThreads bool `yaml:"enable_threads"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("invalid engine config").
			Cause(err).
			Build()
	}
	return nil
}
