package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealth_Ready(t *testing.T) {
	ok := checkerFunc(func(context.Context) error { return nil })
	down := checkerFunc(func(context.Context) error { return errors.New("down") })

	cases := []struct {
		name string
		deps []Dependency
		code int
	}{
		{"all ok", []Dependency{{Name: "postgres", Checker: ok, Required: true}}, http.StatusOK},
		{"optional down", []Dependency{{Name: "postgres", Checker: ok, Required: true}, {Name: "r2", Checker: down}}, http.StatusOK},
		{"required down", []Dependency{{Name: "redis", Checker: down, Required: true}}, http.StatusServiceUnavailable},
		{"disabled", []Dependency{{Name: "redis", Required: true}}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler("test", tc.deps...)
			r := gin.New()
			r.GET("/ready", h.Ready)
			assert.Equal(t, tc.code, serve(r, http.MethodGet, "/ready", nil).Code)
		})
	}
}
