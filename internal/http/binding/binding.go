// Package binding decodes and validates JSON request bodies for handlers.
package binding

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"tasklane/internal/http/responses"
)

var validate = validator.New()

// BindAndValidate reads the JSON body into dst and runs validation with tags
// `validate:"..."`. On failure it writes the 400 response and returns false.
func BindAndValidate[T any](w http.ResponseWriter, r *http.Request, dst *T) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		responses.WriteBadRequest(w, "invalid JSON payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		responses.WriteBadRequest(w, "request failed validation")
		return false
	}

	return true
}
