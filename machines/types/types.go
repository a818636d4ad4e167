package types

// Type identifies a concrete machine implementation of the engine contract.
type Type string

const (
	// Goja engine: https://github.com/dop251/goja
	Goja Type = "goja"

	// QuickJS engine: https://github.com/buke/quickjs-go
	QuickJS Type = "quickjs"
)

func (t Type) String() string {
	return string(t)
}

// Valid reports whether t names a known machine type.
func (t Type) Valid() bool {
	switch t {
	case Goja, QuickJS:
		return true
	}
	return false
}
