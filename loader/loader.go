/*
	The loader package is the interface to the host's code unit namespace.

	A Namespace turns source text into a live, named Unit: it compiles the
	source, runs its top-level statements, and registers the result under
	the name given, where anything in the process can later look it up.
	Registration is all-or-nothing from the caller's point of view:
	if compilation or top-level execution fails, nothing stays registered.

	The `loader/starlark` package is the implementation used by default.
*/
package loader

/*
	Namespace is the host registration primitive for code units.

	Implementations must be safe to call from multiple goroutines,
	and must return errors with an `api.ErrorCategory`:

	  - RegisterAndExecute: `api.ErrLoadFailed` if the source fails to
	    compile or its top-level execution fails, and `api.ErrUsage` if
	    a unit of that name is already registered.
	  - Unregister: `api.ErrDeleteFailed` if the unit can't be released.
	    Unregistering a name that isn't registered is not an error.
*/
type Namespace interface {
	RegisterAndExecute(unitName string, origin string, src []byte) (Unit, error)
	Unregister(unitName string) error
	Has(unitName string) bool
}

/*
	Unit is a registered piece of loaded code.

	Values crossing into and out of a unit are plain Go values:
	nil, bool, int64, float64, string, []interface{}, and
	map[string]interface{}.  Functions are returned as Callable.
*/
type Unit interface {
	Name() string   // the name it's registered under.
	Origin() string // the file it was loaded from.

	// The names of the unit's top-level definitions, sorted.
	Names() []string

	// Looks up a top-level definition.
	Value(name string) (interface{}, bool)

	// Calls a top-level function.  Failures are `api.ErrCallFailed`.
	Call(fn string, args ...interface{}) (interface{}, error)
}

// What Unit.Value returns for a function: its name, and that it can be called.
type Callable struct {
	Name string
}
