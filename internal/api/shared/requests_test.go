package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"gato"}`, false},
		{"malformed", `{"name":`, true},
		{"empty body", ``, true},
		{"unknown field", `{"name":"gato","age":3}`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p payload
			err := DecodeJSON(req, &p)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "gato", p.Name)
		})
	}
}

type selfValidating struct{ ok bool }

func (s *selfValidating) Validate() error {
	if !s.ok {
		return assert.AnError
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type tagged struct {
		Name string `validate:"required"`
	}

	assert.NoError(t, ValidateRequest(&tagged{Name: "x"}))
	assert.Error(t, ValidateRequest(&tagged{}))
	assert.NoError(t, ValidateRequest(&selfValidating{ok: true}))
	assert.ErrorIs(t, ValidateRequest(&selfValidating{}), assert.AnError)
}
