/*
	A loader.Namespace backed by a Starlark interpreter.

	Each unit's source is executed once, at registration, in its own
	thread; the resulting globals are frozen, so any number of goroutines
	may call into a loaded unit at once.

	Units can `load()` one another by registered name,
	and `print()` from any unit goes to the Monitor as a log event.
*/
package starlark

import (
	"fmt"
	"sort"
	"sync"

	"github.com/warpfork/go-errcat"
	"go.starlark.net/starlark"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/loader"
	"github.com/Avishs-nd/MuskCult/log"
)

var (
	_ loader.Namespace = &Namespace{}
	_ loader.Unit      = &unit{}
)

type Namespace struct {
	mon         api.Monitor
	predeclared starlark.StringDict

	mu sync.Mutex
	// A nil entry is a name reserved by a registration still executing.
	units map[string]*unit
}

/*
	Returns a new, empty namespace.

	Predeclared values (may be nil) are visible to every unit's code,
	in addition to the Starlark universe.
*/
func NewNamespace(mon api.Monitor, predeclared starlark.StringDict) *Namespace {
	return &Namespace{
		mon:         mon,
		predeclared: predeclared,
		units:       make(map[string]*unit),
	}
}

func (ns *Namespace) RegisterAndExecute(unitName string, origin string, src []byte) (_ loader.Unit, err error) {
	defer errcat.RequireErrorHasCategory(&err, api.ErrorCategory(""))

	if unitName == "" {
		return nil, errcat.Errorf(api.ErrUsage, "unit name must not be empty")
	}
	ns.mu.Lock()
	if _, exists := ns.units[unitName]; exists {
		ns.mu.Unlock()
		return nil, errcat.Errorf(api.ErrUsage, "a unit named %q is already registered", unitName)
	}
	ns.units[unitName] = nil
	ns.mu.Unlock()

	// Execute without holding the lock: top-level code may load other units.
	globals, err := starlark.ExecFile(ns.thread(unitName), origin, src, ns.predeclared)

	ns.mu.Lock()
	defer ns.mu.Unlock()
	if err != nil {
		delete(ns.units, unitName)
		return nil, errLoadFailed(unitName, origin, err)
	}
	globals.Freeze()
	u := &unit{ns: ns, name: unitName, origin: origin, globals: globals}
	ns.units[unitName] = u
	return u, nil
}

func (ns *Namespace) Unregister(unitName string) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if u, exists := ns.units[unitName]; exists && u == nil {
		return errcat.Errorf(api.ErrDeleteFailed, "unit %q is still being loaded", unitName)
	}
	delete(ns.units, unitName)
	return nil
}

func (ns *Namespace) Has(unitName string) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	_, exists := ns.units[unitName]
	return exists
}

// Names of all units currently registered, sorted.
func (ns *Namespace) Units() []string {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	names := make([]string, 0, len(ns.units))
	for name, u := range ns.units {
		if u != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (ns *Namespace) lookup(unitName string) (*unit, bool) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	u := ns.units[unitName]
	return u, u != nil
}

// Threads are cheap and not safe for concurrent use, so every execution gets its own.
func (ns *Namespace) thread(unitName string) *starlark.Thread {
	return &starlark.Thread{
		Name: unitName,
		Print: func(_ *starlark.Thread, msg string) {
			log.UnitPrint(ns.mon, unitName, msg)
		},
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			dep, ok := ns.lookup(module)
			if !ok {
				return nil, fmt.Errorf("no unit named %q is registered", module)
			}
			return dep.globals, nil
		},
	}
}

func errLoadFailed(unitName, origin string, cause error) error {
	details := map[string]string{
		"unit":   unitName,
		"origin": origin,
		"cause":  cause.Error(),
	}
	if evalErr, ok := cause.(*starlark.EvalError); ok {
		details["backtrace"] = evalErr.Backtrace()
	}
	return errcat.ErrorDetailed(api.ErrLoadFailed, fmt.Sprintf("loading unit %s from %s failed: %s", unitName, origin, cause), details)
}
