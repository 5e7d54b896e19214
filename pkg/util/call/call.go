// Package call chains error-returning functions so callers can express a
// sequence of fallible operations without repeating the error check
package call

type (
	// Call is a unit of fallible work
	Call func() error
)

// Perform invokes each call in turn, stopping at the first error
func Perform(calls ...Call) error {
	for _, c := range calls {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// WithArg adapts a single-argument function into a Call by capturing its
// argument up front
func WithArg[Arg any](fn func(Arg) error, arg Arg) Call {
	return func() error {
		return fn(arg)
	}
}

// WithArgs adapts a two-argument function into a Call
func WithArgs[Arg1, Arg2 any](
	fn func(Arg1, Arg2) error, arg1 Arg1, arg2 Arg2,
) Call {
	return func() error {
		return fn(arg1, arg2)
	}
}
