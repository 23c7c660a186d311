package layout

import (
	"import.name/pan"
)

var z = new(pan.Zone)

// Must returns x, or panics with err if it is non-nil. A code generator that
// has no use for a failed compilation unit can wrap layout queries in Must
// and recover once per unit:
//
//	func compileFunc(l *layout.Layout, f *Func) (err error) {
//		defer func() { err = layout.Error(recover()) }()
//		off := layout.Must(layout.IndexOffset(l, f.Callee))
//		...
//	}
func Must[T any](x T, err error) T {
	z.Check(err)
	return x
}

// Error returns the error carried by a panic raised by Must, or nil if x is
// nil. Other panics are propagated.
func Error(x any) error {
	return z.Error(x)
}
