package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/backpackor/planner/internal/domain"
)

// bindQuery binds an optional form-style query parameter into dest.
func bindQuery(q url.Values, name string, explode bool, dest any) error {
	if err := runtime.BindQueryParameter("form", explode, false, name, q, dest); err != nil {
		return fmt.Errorf("invalid query parameter %s: %w", name, err)
	}
	return nil
}

// bindPath binds a required simple-style path parameter into dest.
func bindPath(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return fmt.Errorf("invalid path parameter %s: %w", name, err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := bindPath(r, name, &id)
	return id, err
}

func pathDay(r *http.Request) (int, error) {
	var day int
	if err := bindPath(r, "day", &day); err != nil {
		return 0, err
	}
	if day < 1 {
		return 0, errors.New("invalid path parameter day: must be at least 1")
	}
	return day, nil
}

// pageParams reads optional page and limit query parameters.
func pageParams(q url.Values) (domain.PaginationParams, error) {
	var page, limit *int
	if err := bindQuery(q, "page", true, &page); err != nil {
		return domain.PaginationParams{}, err
	}
	if err := bindQuery(q, "limit", true, &limit); err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}

// decodeBody decodes a JSON body into dst and validates it. It writes the
// error response itself and reports whether the caller should continue.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		switch {
		case errTooLarge(err):
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "request body is required")
		default:
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed JSON: "+err.Error())
		}
		return false
	}
	if err := s.validate.Validate(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
		return false
	}
	return true
}
