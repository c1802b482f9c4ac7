package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "Acme", false},
		{"valid with spaces", "Acme Corp", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Name(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Name(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestHTTPURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"https", "https://abc.supabase.co", false},
		{"http with port", "http://localhost:54321", false},
		{"no scheme", "abc.supabase.co", true},
		{"ftp", "ftp://files.example.com", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HTTPURL(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "HTTPURL(%q) error = %v", tt.input, err)
		})
	}
}

type contact struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"omitempty,email"`
	Tier  string `json:"tier" validate:"omitempty,oneof=free pro"`
	Seats int    `json:"seats" validate:"gte=0,lte=10"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(contact{Name: "Ana", Email: "ana@example.com", Tier: "pro", Seats: 3}))
	})

	t.Run("collects every field", func(t *testing.T) {
		err := Struct(contact{Name: "  ", Email: "nope", Tier: "gold", Seats: 11})
		require.Error(t, err)

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)

		byField := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			byField[fe.Field] = fe.Err.Error()
		}
		assert.Len(t, byField, 4)
		assert.Equal(t, "is required", byField["name"])
		assert.Equal(t, "must be a valid email address", byField["email"])
		assert.Equal(t, "must be one of: free pro", byField["tier"])
		assert.Equal(t, "must be at most 10", byField["seats"])
	})
}
