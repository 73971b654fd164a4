package pipeline

import "errors"

// ErrInvalidPayload indicates the request body does not match the run schema.
var ErrInvalidPayload = errors.New("invalid payload")

// ErrMalformedIdentifier indicates the identifier service answered with something that is not a UUID.
var ErrMalformedIdentifier = errors.New("malformed identifier")
