package types

// ResultKind tags the three states an asynchronous operation can surface.
type ResultKind int

const (
	ResultLoading ResultKind = iota
	ResultSuccess
	ResultFailure
)

// Result is a three-variant outcome wrapper. Callers switch on Kind() and can
// rely on the accessors panicking only when misused across variants.
type Result[T any] struct {
	kind ResultKind
	data T
	err  error
}

func Success[T any](data T) Result[T] {
	return Result[T]{kind: ResultSuccess, data: data}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{kind: ResultFailure, err: err}
}

func Loading[T any]() Result[T] {
	return Result[T]{kind: ResultLoading}
}

func (r Result[T]) Kind() ResultKind {
	return r.kind
}

func (r Result[T]) IsSuccess() bool {
	return r.kind == ResultSuccess
}

func (r Result[T]) IsFailure() bool {
	return r.kind == ResultFailure
}

func (r Result[T]) IsLoading() bool {
	return r.kind == ResultLoading
}

// Value returns the payload for success results and the zero value otherwise.
func (r Result[T]) Value() T {
	return r.data
}

// Err returns the failure cause, nil for the other variants.
func (r Result[T]) Err() error {
	return r.err
}

// Match dispatches exactly one of the three callbacks for the current variant.
func (r Result[T]) Match(onSuccess func(T), onFailure func(error), onLoading func()) {
	switch r.kind {
	case ResultSuccess:
		if onSuccess != nil {
			onSuccess(r.data)
		}
	case ResultFailure:
		if onFailure != nil {
			onFailure(r.err)
		}
	case ResultLoading:
		if onLoading != nil {
			onLoading()
		}
	}
}
