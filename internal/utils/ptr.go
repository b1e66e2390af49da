package utils

// Ptr returns a pointer to a copy of v. Useful for the optional score
// and count fields that the report and ranking types model as pointers.
func Ptr[T any](v T) *T {
	return &v
}
