package http_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mallHttp "github.com/vasiliy-maslov/shopping-mall/internal/handler/http"
)

type panicRoutes struct{}

func (panicRoutes) RegisterRoutes(router chi.Router) {
	router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestRouter_UnmatchedRoutes(t *testing.T) {
	router := mallHttp.NewRouter(mallHttp.NewProductHandler(new(MockProductService)))

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/elsewhere"},
		{http.MethodGet, "/api"},
		{http.MethodPatch, "/api/products/1"},
		{http.MethodDelete, "/api/categories"},
	} {
		rr := serve(t, router, tc.method, tc.target, nil)
		require.Equal(t, http.StatusNotFound, rr.Code, "%s %s", tc.method, tc.target)
		assert.JSONEq(t, `{"success":false,"error":"Route not found"}`, rr.Body.String())
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	router := mallHttp.NewRouter(panicRoutes{})

	rr := serve(t, router, http.MethodGet, "/api/boom", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rr.Body.String())
}

func TestRouter_RejectsOversizedBodies(t *testing.T) {
	mockService := new(MockUserService)
	router := mallHttp.NewRouter(mallHttp.NewUserHandler(mockService))

	big := append([]byte(`{"email":"a@example.com","password":"`), bytes.Repeat([]byte("x"), mallHttp.MaxBodyBytes)...)
	big = append(big, []byte(`"}`)...)

	rr := serve(t, router, http.MethodPost, "/api/auth/register", big)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestHealthHandler(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		router := mallHttp.NewRouter(mallHttp.NewHealthHandler(stubPinger{err: errors.New("down")}, "test"))

		rr := serve(t, router, http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"ok"`)
		assert.Contains(t, rr.Body.String(), `"environment":"test"`)
		assert.Contains(t, rr.Body.String(), `"timestamp":`)
	})

	t.Run("database_connected", func(t *testing.T) {
		router := mallHttp.NewRouter(mallHttp.NewHealthHandler(stubPinger{}, "test"))

		rr := serve(t, router, http.MethodGet, "/api/health/db", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"database":"connected"`)
	})

	t.Run("database_unavailable", func(t *testing.T) {
		router := mallHttp.NewRouter(mallHttp.NewHealthHandler(stubPinger{err: errors.New("dial tcp: refused")}, "test"))

		rr := serve(t, router, http.MethodGet, "/api/health/db", nil)
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Database unavailable"}`, rr.Body.String())
	})
}
