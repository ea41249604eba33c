// Package merge contains the strategies used to combine the pillar fragments that
// successive sources produce.
package merge

import (
	"fmt"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// A Strategy merges the fragment produced by a pillar source into the pillar
// assembled so far.
type Strategy interface {
	// Name returns the name under which the strategy is configured.
	Name() string

	// Merge combines the already assembled value a with the new value b.
	Merge(a, b dgo.Value) dgo.Value
}

type (
	firstFound struct{}

	hashMerge struct{}

	deepMerge struct{}
)

// GetStrategy returns the Strategy that corresponds to the given name. A panic is
// raised for an unknown name.
func GetStrategy(n string) Strategy {
	switch n {
	case `first`:
		return &firstFound{}
	case `hash`:
		return &hashMerge{}
	case `deep`:
		return &deepMerge{}
	default:
		panic(fmt.Errorf(`unknown merge strategy '%s'`, n))
	}
}

func (*firstFound) Name() string {
	return `first`
}

// Merge returns a unless it is nil or an empty map, in which case b is returned.
func (*firstFound) Merge(a, b dgo.Value) dgo.Value {
	if a == nil {
		return b
	}
	if m, ok := a.(dgo.Map); ok && m.Len() == 0 {
		return b
	}
	return a
}

func (*hashMerge) Name() string {
	return `hash`
}

// Merge combines two maps on the top level. Keys present in both maps get the value
// from b, so a later source wins over an earlier one.
func (*hashMerge) Merge(a, b dgo.Value) dgo.Value {
	am, aok := a.(dgo.Map)
	bm, bok := b.(dgo.Map)
	if !(aok && bok) {
		if b == nil {
			return a
		}
		return b
	}
	es := vf.MapWithCapacity(am.Len() + bm.Len())
	es.PutAll(am)
	es.PutAll(bm)
	return es
}

func (*deepMerge) Name() string {
	return `deep`
}

// Merge combines the values a and b recursively. Two maps merge entry by entry, two
// arrays form a union of their unique elements, and for any other combination b
// wins.
func (*deepMerge) Merge(a, b dgo.Value) dgo.Value {
	return Deep(a, b)
}

// Deep merges the values a and b. When both values are maps, Deep is called
// recursively for entries with identical keys and remaining entries are copied.
// When both values are arrays, the result is a union of the unique elements from
// the two arrays with no recursive merge of the elements. In all other cases b is
// returned, so a later source wins over an earlier one.
func Deep(a, b dgo.Value) dgo.Value {
	switch a := a.(type) {
	case dgo.Map:
		if hb, ok := b.(dgo.Map); ok {
			es := vf.MapWithCapacity(a.Len() + hb.Len())
			a.EachEntry(func(e dgo.MapEntry) {
				es.Put(e.Key(), e.Value())
			})
			hb.EachEntry(func(e dgo.MapEntry) {
				if av := a.Get(e.Key()); av != nil {
					es.Put(e.Key(), Deep(av, e.Value()))
				} else {
					es.Put(e.Key(), e.Value())
				}
			})
			return es
		}
	case dgo.Array:
		if ab, ok := b.(dgo.Array); ok {
			if a.Len() == 0 {
				return ab
			}
			return a.WithAll(ab).Unique()
		}
	}
	if b == nil {
		return a
	}
	return b
}
