package registry

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Identity is the runtime handle of a value: where it lives and what it is.
// Value equality plays no part; two equal structs at different addresses
// are different identities. Len tells slices sharing a backing array apart.
type Identity struct {
	Addr uintptr
	Type reflect.Type
	Len  int
}

// String renders the identity for hashing and debugging
func (id Identity) String() string {
	return fmt.Sprintf("%s@%#x/%d", id.Type, id.Addr, id.Len)
}

// Hive remembers which identities were fully expanded during one top-level
// call, and which derived views (method lists, constant lists) were rendered.
type Hive struct {
	objects *BaseRegistry[Identity, string]
	meta    *BaseRegistry[string, struct{}]
}

// NewHive creates an empty hive
func NewHive() *Hive {
	return &Hive{
		objects: NewBaseRegistry[Identity, string](),
		meta:    NewBaseRegistry[string, struct{}](),
	}
}

// IsInHive reports whether id was already expanded
func (h *Hive) IsInHive(id Identity) bool {
	return h.objects.Has(id)
}

// AddToHive marks id as expanded and records the DOM id of its first rendering
func (h *Hive) AddToHive(id Identity, domID string) {
	h.objects.Add(id, domID)
}

// DomIDOf returns the DOM id recorded for id
func (h *Hive) DomIDOf(id Identity) (string, bool) {
	return h.objects.Get(id)
}

// IsInMetaHive reports whether a derived view was already rendered
func (h *Hive) IsInMetaHive(key string) bool {
	return h.meta.Has(key)
}

// AddToMetaHive marks a derived view as rendered
func (h *Hive) AddToMetaHive(key string) {
	h.meta.Add(key, struct{}{})
}

// Count returns the number of expanded identities
func (h *Hive) Count() int {
	return h.objects.Count()
}

// Clear forgets everything; called at the start of every top-level call
func (h *Hive) Clear() {
	h.objects.Clear()
	h.meta.Clear()
}

// DomID derives the deterministic DOM id of an identity within one call
func DomID(callCount int, id Identity) string {
	return "k" + strconv.Itoa(callCount) + "_" + strconv.FormatUint(xxhash.Sum64String(id.String()), 36)
}

// MetaKey builds the meta-hive key of a derived view. Different visibility
// sets of the same type produce different keys.
func MetaKey(callCount int, view string, flags string, typeName string) string {
	return "k" + strconv.Itoa(callCount) + "_" + view + "_" + flags + "_" +
		strconv.FormatUint(xxhash.Sum64String(typeName), 36)
}
