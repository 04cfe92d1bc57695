package starlark

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/Avishs-nd/MuskCult/loader"
)

// Converts a plain Go value into a Starlark one.
func toStarlark(v interface{}) (starlark.Value, error) {
	switch v2 := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return v2, nil
	case bool:
		return starlark.Bool(v2), nil
	case int:
		return starlark.MakeInt(v2), nil
	case int32:
		return starlark.MakeInt64(int64(v2)), nil
	case int64:
		return starlark.MakeInt64(v2), nil
	case uint:
		return starlark.MakeUint(v2), nil
	case uint64:
		return starlark.MakeUint64(v2), nil
	case float32:
		return starlark.Float(v2), nil
	case float64:
		return starlark.Float(v2), nil
	case string:
		return starlark.String(v2), nil
	case []byte:
		return starlark.Bytes(v2), nil
	case []interface{}:
		elems := make([]starlark.Value, len(v2))
		for i := range v2 {
			elem, err := toStarlark(v2[i])
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return starlark.NewList(elems), nil
	case []string:
		elems := make([]starlark.Value, len(v2))
		for i := range v2 {
			elems[i] = starlark.String(v2[i])
		}
		return starlark.NewList(elems), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v2))
		for k := range v2 {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := starlark.NewDict(len(v2))
		for _, k := range keys {
			elem, err := toStarlark(v2[k])
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), elem); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("cannot pass a %T to loaded code", v)
	}
}

/*
	Converts a Starlark value into a plain Go one.

	Ints that don't fit an int64, and any types without a plain Go
	equivalent, come back as the string of their Starlark form.
*/
func fromStarlark(v starlark.Value) interface{} {
	switch v2 := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(v2)
	case starlark.Int:
		if i, ok := v2.Int64(); ok {
			return i
		}
		return v2.String()
	case starlark.Float:
		return float64(v2)
	case starlark.String:
		return string(v2)
	case starlark.Bytes:
		return []byte(v2)
	case *starlark.List:
		out := make([]interface{}, v2.Len())
		for i := range out {
			out[i] = fromStarlark(v2.Index(i))
		}
		return out
	case starlark.Tuple:
		out := make([]interface{}, len(v2))
		for i := range v2 {
			out[i] = fromStarlark(v2[i])
		}
		return out
	case *starlark.Dict:
		out := make(map[string]interface{}, v2.Len())
		for _, item := range v2.Items() {
			key, ok := item[0].(starlark.String)
			if ok {
				out[string(key)] = fromStarlark(item[1])
			} else {
				out[item[0].String()] = fromStarlark(item[1])
			}
		}
		return out
	case starlark.Callable:
		return loader.Callable{Name: v2.Name()}
	default:
		return v.String()
	}
}
