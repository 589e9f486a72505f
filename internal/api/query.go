package api

import (
	"context"
	"net/http"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/report"
	"github.com/erazemk/cssd/internal/service"
)

// parseQuery reads the listing filters from the URL.
func parseQuery(r *http.Request) (report.Query, error) {
	v := r.URL.Query()
	rng, err := report.ParseDateRange(v.Get("from"), v.Get("to"))
	if err != nil {
		return report.Query{}, err
	}
	return report.Query{
		Range:      rng,
		Status:     v.Get("status"),
		Priority:   v.Get("priority"),
		Department: v.Get("department"),
		Search:     v.Get("q"),
	}, nil
}

// listHandler serves a filtered, display-sorted collection.
func listHandler[T any](store collection.Store, name string, fields report.Fields[T], key func(T) (string, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			writeError(w, err)
			return
		}
		records, err := service.List(r.Context(), store, name, q, fields, key)
		if err != nil {
			writeError(w, err)
			return
		}
		if records == nil {
			records = []T{}
		}
		jsonResponse(w, http.StatusOK, records)
	}
}

// createHandler decodes a request body of type In and runs create on it.
func createHandler[In, Out any](create func(context.Context, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(r, &in); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		out, err := create(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, out)
	}
}

// replaceHandler decodes the body into In and runs op on it.
func replaceHandler[In, Out any](op func(context.Context, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(r, &in); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		out, err := op(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, out)
	}
}

// idHandler runs op on the {id} path value.
func idHandler[Out any](op func(context.Context, string) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := op(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, out)
	}
}

// runHandler runs a maintenance operation that takes no input.
func runHandler[Out any](op func(context.Context) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := op(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, out)
	}
}
