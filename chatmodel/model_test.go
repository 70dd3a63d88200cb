package chatmodel_test

import (
	goerr "errors"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gogentic-mermaid/chatmodel"
	"github.com/stretchr/testify/assert"
)

func TestErrFailedUnmarshalInput(t *testing.T) {
	err := chatmodel.ErrFailedUnmarshalInput
	assert.True(t, goerr.Is(err, chatmodel.ErrFailedUnmarshalInput))
	assert.True(t, goerr.Is(errors.WithStack(err), chatmodel.ErrFailedUnmarshalInput))
	assert.True(t, goerr.Is(errors.Wrap(err, "test"), chatmodel.ErrFailedUnmarshalInput))
	assert.True(t, goerr.Is(errors.WithMessage(err, "test"), chatmodel.ErrFailedUnmarshalInput))
	assert.False(t, goerr.Is(errors.New("failed to unmarshal input"), chatmodel.ErrFailedUnmarshalInput))
}
