package internal

// Pointer - Returns a pointer to a copy of v. Handy for literals, which can't be addressed with `&`.
func Pointer[T any](v T) *T {
	return &v
}

// Dereference - Returns the value p points to, or the zero value when p is nil.
func Dereference[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}
