package irtype

import "irbind/internal/ffi"

// engine is the foreign engine every handle in this package belongs to.
var engine ffi.ABI = defaultEngine()

// EngineName reports which engine the package was built against.
func EngineName() string {
	return engineName
}
