package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: fail(ErrNotFound, "User not found"), want: "User not found"},
		{name: "validation", err: fail(ErrValidation, "size must be greater than %d", 0), want: "size must be greater than 0"},
		{name: "plain", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientMessage(tt.err))
		})
	}
}

func TestFailKeepsKind(t *testing.T) {
	err := fail(ErrAuthorization, "Not in this private chat")
	assert.ErrorIs(t, err, ErrAuthorization)
	assert.NotErrorIs(t, err, ErrValidation)
}
