//go:build llvm

package irtype

import (
	"irbind/internal/ffi"
	"irbind/internal/ffi/llvmc"
)

const engineName = "llvm"

func defaultEngine() ffi.ABI {
	return llvmc.New()
}
