package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestConvertMongoError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, ConvertMongoError(nil))
	})

	t.Run("no documents becomes not found", func(t *testing.T) {
		err := ConvertMongoError(fmt.Errorf("find: %w", mongo.ErrNoDocuments))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, StatusNotFound, StatusOf(err))
	})

	t.Run("duplicate key becomes conflict with field", func(t *testing.T) {
		dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
			Code:    11000,
			Message: `E11000 duplicate key error collection: qced.employees index: email_1 dup key: { email: "a@b.c" }`,
		}}}
		err := ConvertMongoError(dup)

		var appErr *Error
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, StatusConflict, appErr.StatusCode)
		assert.Equal(t, map[string]string{"index": "email_1", "field": "email"}, appErr.Details)
	})

	t.Run("app errors pass through", func(t *testing.T) {
		assert.Same(t, ErrForbidden, ConvertMongoError(ErrForbidden))
	})

	t.Run("unknown error is internal", func(t *testing.T) {
		err := ConvertMongoError(errors.New("boom"))
		assert.Equal(t, StatusInternalServerError, StatusOf(err))
	})
}

func TestErrorIs(t *testing.T) {
	copyOfNotFound := NewError(ErrCodeDatabaseQuery, "Resource not found", StatusNotFound, "extra")
	assert.ErrorIs(t, copyOfNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrDuplicate, ErrNotFound)
	assert.NotErrorIs(t, errors.New("Resource not found"), ErrNotFound)
}

func TestStatusOf_PlainError(t *testing.T) {
	assert.Equal(t, StatusInternalServerError, StatusOf(errors.New("x")))
	assert.Equal(t, StatusUnauthorized, StatusOf(ErrTokenInvalid))
}
