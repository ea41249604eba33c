package api

import (
	"fmt"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// ToMap coerces the given interface{} argument to a dgo.Map and returns it. A panic
// is raised if the argument cannot be coerced into a map.
func ToMap(argName string, vi interface{}) dgo.Map {
	value := vf.Value(vi)
	if vf.Nil != value {
		if m, ok := value.(dgo.Map); ok {
			return m
		}
		panic(fmt.Errorf(`%s does not represent a map`, argName))
	}
	return vf.Map()
}

// Truthy reports whether the given value counts as present when resolving grain
// placeholders. Nil, false, zero, the empty string, and empty collections all
// count as absent. Note that this deliberately rejects legitimate values such as
// a grain that is set to 0 or false, matching the convention of the hosts this
// library serves.
func Truthy(v dgo.Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case dgo.Boolean:
		return v.GoBool()
	case dgo.Integer:
		return v.GoInt() != 0
	case dgo.Float:
		return v.GoFloat() != 0
	case dgo.String:
		return v.GoString() != ``
	case dgo.Array:
		return v.Len() != 0
	case dgo.Map:
		return v.Len() != 0
	default:
		return !v.Equals(vf.Nil)
	}
}
