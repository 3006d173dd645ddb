package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/shopping-mall/internal/apperr"
	"github.com/vasiliy-maslov/shopping-mall/internal/product"
	"github.com/vasiliy-maslov/shopping-mall/internal/user"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: apperr.NewValidation("name is required"), want: http.StatusBadRequest},
		{name: "product_not_found", err: product.ErrNotFound, want: http.StatusNotFound},
		{name: "user_not_found", err: user.ErrNotFound, want: http.StatusNotFound},
		{name: "duplicate_email", err: user.ErrEmailExists, want: http.StatusBadRequest},
		{name: "invalid_credentials", err: user.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "store_unavailable", err: apperr.NewStoreUnavailable("op", errors.New("dial")), want: http.StatusInternalServerError},
		{name: "wrapped_store_unavailable", err: fmt.Errorf("service: x: %w", apperr.NewStoreUnavailable("op", errors.New("dial"))), want: http.StatusInternalServerError},
		{name: "wrapped_not_found", err: fmt.Errorf("service: x: %w", product.ErrNotFound), want: http.StatusNotFound},
		{name: "plain_error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToStatusCode(tt.err))
		})
	}
}

func TestStatusByKind_CoversEveryKind(t *testing.T) {
	for _, k := range []apperr.Kind{apperr.Internal, apperr.Validation, apperr.NotFound, apperr.DuplicateEmail, apperr.Unauthenticated, apperr.StoreUnavailable} {
		_, ok := statusByKind[k]
		assert.True(t, ok, "kind %s has no status", k)
	}
}
