package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ X, Y int }

func TestHiveUsesIdentityNotEquality(t *testing.T) {
	a := &point{1, 2}
	b := &point{1, 2}
	typ := reflect.TypeOf(a)

	idA := Identity{Addr: reflect.ValueOf(a).Pointer(), Type: typ}
	idB := Identity{Addr: reflect.ValueOf(b).Pointer(), Type: typ}

	h := NewHive()
	h.AddToHive(idA, DomID(1, idA))

	assert.True(t, h.IsInHive(idA))
	assert.False(t, h.IsInHive(idB), "value-equal objects are distinct entries")

	domID, ok := h.DomIDOf(idA)
	assert.True(t, ok)
	assert.Equal(t, DomID(1, idA), domID)
}

func TestHiveTypeIsPartOfIdentity(t *testing.T) {
	p := &point{}
	addr := reflect.ValueOf(p).Pointer()

	// a struct and its first field share an address
	asStruct := Identity{Addr: addr, Type: reflect.TypeOf(*p)}
	asField := Identity{Addr: addr, Type: reflect.TypeOf(p.X)}

	h := NewHive()
	h.AddToHive(asStruct, "x")
	assert.False(t, h.IsInHive(asField))
}

func TestHiveClear(t *testing.T) {
	h := NewHive()
	id := Identity{Addr: 1, Type: reflect.TypeOf(0)}
	h.AddToHive(id, "x")
	h.AddToMetaHive("meta")

	h.Clear()
	assert.False(t, h.IsInHive(id))
	assert.False(t, h.IsInMetaHive("meta"))
	assert.Equal(t, 0, h.Count())
}

func TestMetaKeyKeepsVisibilityViewsApart(t *testing.T) {
	public := MetaKey(3, "methods", "pub", "*main.Thing")
	withPrivate := MetaKey(3, "methods", "pub+priv", "*main.Thing")
	otherCall := MetaKey(4, "methods", "pub", "*main.Thing")

	assert.NotEqual(t, public, withPrivate)
	assert.NotEqual(t, public, otherCall)
	assert.Equal(t, public, MetaKey(3, "methods", "pub", "*main.Thing"))
}

func TestDomIDIsDeterministic(t *testing.T) {
	id := Identity{Addr: 0xc000010000, Type: reflect.TypeOf(point{})}
	assert.Equal(t, DomID(2, id), DomID(2, id))
	assert.NotEqual(t, DomID(2, id), DomID(3, id))
	assert.Regexp(t, `^k2_[0-9a-z]+$`, DomID(2, id))
}
