package chatmodel

import (
	"github.com/cockroachdb/errors"
)

// ErrFailedUnmarshalInput is returned by the tool when the input does not match its schema
var ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
