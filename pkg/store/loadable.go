package store

// LoadStatus is the lifecycle state of an asynchronously loaded value.
type LoadStatus int

const (
	// StatusIdle means no load has been requested
	StatusIdle LoadStatus = iota

	// StatusLoading means a request is in flight
	StatusLoading

	// StatusSuccess means the value loaded successfully
	StatusSuccess

	// StatusError means the load failed
	StatusError
)

// String returns a human-readable status name.
func (s LoadStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Loadable holds a value together with its load status. Each detail slot in
// the store is an independent Loadable so that one failed lookup cannot
// affect its siblings.
type Loadable[T any] struct {
	// Status is the current lifecycle state
	Status LoadStatus

	// Data is valid only when Status is StatusSuccess
	Data T

	// Err is set only when Status is StatusError
	Err error
}

// Loading returns a Loadable in the loading state.
func Loading[T any]() Loadable[T] {
	return Loadable[T]{Status: StatusLoading}
}

// Success returns a Loadable holding a loaded value.
func Success[T any](data T) Loadable[T] {
	return Loadable[T]{Status: StatusSuccess, Data: data}
}

// Failure returns a Loadable holding a load error.
func Failure[T any](err error) Loadable[T] {
	return Loadable[T]{Status: StatusError, Err: err}
}
