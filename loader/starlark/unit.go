package starlark

import (
	"fmt"

	"github.com/warpfork/go-errcat"
	"go.starlark.net/starlark"

	"github.com/Avishs-nd/MuskCult/api"
)

type unit struct {
	ns      *Namespace
	name    string
	origin  string
	globals starlark.StringDict // frozen
}

func (u *unit) Name() string    { return u.name }
func (u *unit) Origin() string  { return u.origin }
func (u *unit) Names() []string { return u.globals.Keys() }

func (u *unit) Value(name string) (interface{}, bool) {
	v, ok := u.globals[name]
	if !ok {
		return nil, false
	}
	return fromStarlark(v), true
}

func (u *unit) Call(fn string, args ...interface{}) (_ interface{}, err error) {
	defer errcat.RequireErrorHasCategory(&err, api.ErrorCategory(""))

	v, ok := u.globals[fn]
	if !ok {
		return nil, u.errCallFailed(fn, "no such function")
	}
	callable, ok := v.(starlark.Callable)
	if !ok {
		return nil, u.errCallFailed(fn, fmt.Sprintf("%s is a %s, not a function", fn, v.Type()))
	}
	sargs := make(starlark.Tuple, len(args))
	for i, arg := range args {
		sargs[i], err = toStarlark(arg)
		if err != nil {
			return nil, u.errCallFailed(fn, fmt.Sprintf("argument %d: %s", i, err))
		}
	}
	result, err := starlark.Call(u.ns.thread(u.name), callable, sargs, nil)
	if err != nil {
		return nil, u.errCallFailed(fn, err.Error())
	}
	return fromStarlark(result), nil
}

func (u *unit) errCallFailed(fn string, cause string) error {
	return errcat.ErrorDetailed(api.ErrCallFailed, fmt.Sprintf("calling %s in unit %s failed: %s", fn, u.name, cause), map[string]string{
		"unit":     u.name,
		"function": fn,
		"cause":    cause,
	})
}
