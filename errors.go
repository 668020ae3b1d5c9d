package grove

import "errors"

var (
	// ErrDatasetLoad wraps every failure to read, decode, prepare or validate
	// a dataset. When returned from Reload the previous snapshot stays live.
	ErrDatasetLoad = errors.New("dataset load failed")

	// ErrMalformedInput indicates a request could not be parsed into engine
	// arguments. Callers map it to a failure response distinct from an empty
	// result.
	ErrMalformedInput = errors.New("malformed input")
)
