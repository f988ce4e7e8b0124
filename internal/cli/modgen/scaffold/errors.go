package scaffold

// MissingAggregateError reports an aggregate wiring file that does not exist.
type MissingAggregateError struct {
	Path string
}

func (e *MissingAggregateError) Error() string {
	return "aggregate file " + e.Path + " not found"
}

// BrokenEditError reports an edit that would leave a cleanly parsing file
// with syntax errors.
type BrokenEditError struct {
	Path string
	Err  error
}

func (e *BrokenEditError) Error() string {
	return "edit would break " + e.Path + ": " + e.Err.Error()
}

func (e *BrokenEditError) Unwrap() error {
	return e.Err
}
