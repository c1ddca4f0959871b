package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avsoarsa/global-gourmet/internal/router"
	"github.com/stretchr/testify/assert"
)

func TestMethodRouting(t *testing.T) {
	r := router.New()
	r.Get("/things", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/things", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/things", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPathValues(t *testing.T) {
	r := router.New()
	r.Get("/orders/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(req.PathValue("id")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc-123", nil))

	assert.Equal(t, "abc-123", rec.Body.String())
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New(tag("global"))
	group := r.Group(tag("group"))
	group.Get("/x", func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	}, tag("route"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, []string{"global", "group", "route", "handler"}, order)
}
