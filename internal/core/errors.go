package core

import "errors"

var (
	// ErrSiteNotFound marks an unknown site identifier.
	ErrSiteNotFound = errors.New("site not found")

	// ErrUpstreamUnavailable marks an exhausted retry budget against the
	// database or the language-model provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrEmptyCompletion marks a provider reply with no usable text.
	ErrEmptyCompletion = errors.New("empty completion from language model")
)
