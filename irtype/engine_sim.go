//go:build !llvm

package irtype

import (
	"irbind/internal/ffi"
	"irbind/internal/ffi/sim"
)

const engineName = "sim"

func defaultEngine() ffi.ABI {
	return sim.New()
}
