package binding

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name     string `json:"name" validate:"required,min=1,max=50"`
	Priority *int   `json:"priority" validate:"omitempty,min=1,max=5"`
}

func bindSample(t *testing.T, body string) (*httptest.ResponseRecorder, *samplePayload, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	var dst samplePayload
	ok := BindAndValidate(rec, req, &dst)
	return rec, &dst, ok
}

func TestBindAndValidateAcceptsValidBody(t *testing.T) {
	rec, dst, ok := bindSample(t, `{"name":"groceries","priority":3}`)
	require.True(t, ok)
	assert.Equal(t, "groceries", dst.Name)
	require.NotNil(t, dst.Priority)
	assert.Equal(t, 3, *dst.Priority)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	rec, _, ok := bindSample(t, `{"name":`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON payload")
}

func TestBindAndValidateRejectsUnknownFields(t *testing.T) {
	rec, _, ok := bindSample(t, `{"name":"x","bogus":true}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindAndValidateRejectsFailedValidation(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"name":""}`,
		`{"name":"x","priority":9}`,
	} {
		rec, _, ok := bindSample(t, body)
		assert.False(t, ok, "body %s", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "request failed validation")
	}
}
