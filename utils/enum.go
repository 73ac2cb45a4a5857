package utils

// CycleEnumPtr moves an int-backed enum by direction, wrapping around [0, max]
func CycleEnumPtr[T ~int](current *T, direction int, max T) {
	*current = (*current + T(direction) + max + 1) % (max + 1)
}
