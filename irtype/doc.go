// Package irtype is a typed, panic-on-invariant layer over the type and
// constant API of an IR backend engine (LLVM-C when built with the llvm tag,
// the in-process simulation otherwise).
//
// # Handles
//
// Context, Type, Value and the views FunctionType, IntType, FloatType and
// StructType each wrap exactly one engine handle. They are small values:
// copying one copies the reference, never the referent. None of them owns
// engine memory. Everything minted in a Context lives until that Context is
// disposed, and no handle may be used after that point:
//
//	err := irtype.WithContext(func(ctx irtype.Context) error {
//		i8 := ctx.I8Type().AsType()
//		fn := i8.FnType([]irtype.Type{i8, i8}, false)
//		_ = fn
//		return nil
//	})
//
// # Identity
//
// The engine interns types per context. Asking the same context twice for the
// same primitive or structural type yields handles that compare equal with ==.
// The package keeps no cache of its own and relies on that guarantee only
// within a single context.
//
// # Failure policy
//
// A null handle where one is required means the engine rejected the call.
// The package panics with *InvariantError at that point instead of threading
// the null into later calls. Lookups that may legitimately find nothing
// (TypeAtStructIndex, the As... view conversions) return an ok flag. Caller
// preconditions such as "all elements share the array's element type" are
// forwarded unchecked by the plain operations; the ...Checked variants verify
// them first and return *ContractError.
//
// # Concurrency
//
// The engine is not safe for concurrent use of one context. A Context and
// every Type and Value interned in it must be used by one goroutine at a time;
// callers that share a context add their own synchronisation. Distinct
// contexts may be used from distinct goroutines.
package irtype
