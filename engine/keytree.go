package engine

import (
	"ridgedb/btree"
	"ridgedb/keykind"
)

// keyTree erases btree.Tree[T]'s type parameter so a tableState can hold
// one regardless of its table's declared primary-key kind, resolved once
// at table-creation time per spec.md §9's "no dynamic dispatch beyond the
// initial kind resolution" design note.
type keyTree interface {
	Insert(key keykind.Value, loc btree.Locator)
	Search(key keykind.Value) (btree.Locator, bool)
	Walk(visit func(key keykind.Value, loc btree.Locator))
	Kind() keykind.Kind
}

func newKeyTree(kind keykind.Kind) keyTree {
	switch kind {
	case keykind.I32:
		return &i32Tree{t: btree.New[int32](keykind.Int32Order{})}
	case keykind.I64:
		return &i64Tree{t: btree.New[int64](keykind.Int64Order{})}
	case keykind.F64:
		return &f64Tree{t: btree.New[float64](keykind.Float64Order{})}
	case keykind.String:
		return &stringTree{t: btree.New[string](keykind.StringOrder{})}
	default:
		panic("engine: unknown key kind")
	}
}

type i32Tree struct{ t *btree.Tree[int32] }

func (a *i32Tree) Insert(key keykind.Value, loc btree.Locator) { a.t.Insert(key.I32(), loc) }
func (a *i32Tree) Search(key keykind.Value) (btree.Locator, bool) { return a.t.Search(key.I32()) }
func (a *i32Tree) Walk(visit func(key keykind.Value, loc btree.Locator)) {
	a.t.Walk(func(k int32, loc btree.Locator) { visit(keykind.NewI32(k), loc) })
}
func (a *i32Tree) Kind() keykind.Kind { return keykind.I32 }

type i64Tree struct{ t *btree.Tree[int64] }

func (a *i64Tree) Insert(key keykind.Value, loc btree.Locator) { a.t.Insert(key.I64(), loc) }
func (a *i64Tree) Search(key keykind.Value) (btree.Locator, bool) { return a.t.Search(key.I64()) }
func (a *i64Tree) Walk(visit func(key keykind.Value, loc btree.Locator)) {
	a.t.Walk(func(k int64, loc btree.Locator) { visit(keykind.NewI64(k), loc) })
}
func (a *i64Tree) Kind() keykind.Kind { return keykind.I64 }

type f64Tree struct{ t *btree.Tree[float64] }

func (a *f64Tree) Insert(key keykind.Value, loc btree.Locator) { a.t.Insert(key.F64(), loc) }
func (a *f64Tree) Search(key keykind.Value) (btree.Locator, bool) { return a.t.Search(key.F64()) }
func (a *f64Tree) Walk(visit func(key keykind.Value, loc btree.Locator)) {
	a.t.Walk(func(k float64, loc btree.Locator) { visit(keykind.NewF64(k), loc) })
}
func (a *f64Tree) Kind() keykind.Kind { return keykind.F64 }

type stringTree struct{ t *btree.Tree[string] }

func (a *stringTree) Insert(key keykind.Value, loc btree.Locator) { a.t.Insert(key.Str(), loc) }
func (a *stringTree) Search(key keykind.Value) (btree.Locator, bool) { return a.t.Search(key.Str()) }
func (a *stringTree) Walk(visit func(key keykind.Value, loc btree.Locator)) {
	a.t.Walk(func(k string, loc btree.Locator) { visit(keykind.NewString(k), loc) })
}
func (a *stringTree) Kind() keykind.Kind { return keykind.String }
