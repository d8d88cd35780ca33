package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	v := NewValidator()
	f, err := v.Parse([]byte(`{"age":35,"income":65000.0,"months_on_book":24,"credit_limit":15000.0}`))
	require.NoError(t, err)
	assert.Equal(t, ClientFeatures{Age: 35, Income: 65000, MonthsOnBook: 24, CreditLimit: 15000}, f)
}

func TestParseAcceptsBoundaries(t *testing.T) {
	v := NewValidator()
	for _, body := range []string{
		`{"age":18,"income":0,"months_on_book":0,"credit_limit":0}`,
		`{"age":100,"income":1,"months_on_book":1,"credit_limit":1}`,
		`{"age":35.0,"income":65000,"months_on_book":24,"credit_limit":15000,"extra":"ignored"}`,
	} {
		_, err := v.Parse([]byte(body))
		assert.NoError(t, err, body)
	}
}

func TestParseViolations(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
		types  []string
	}{
		{
			name:   "missing months and limit",
			body:   `{"age":35,"income":65000.0}`,
			fields: []string{"months_on_book", "credit_limit"},
			types:  []string{"missing", "missing"},
		},
		{
			name:   "age below minimum",
			body:   `{"age":15,"income":65000.0,"months_on_book":24,"credit_limit":15000.0}`,
			fields: []string{"age"},
			types:  []string{"greater_than_equal"},
		},
		{
			name:   "age above maximum",
			body:   `{"age":101,"income":65000.0,"months_on_book":24,"credit_limit":15000.0}`,
			fields: []string{"age"},
			types:  []string{"less_than_equal"},
		},
		{
			name:   "negative income",
			body:   `{"age":35,"income":-1000.0,"months_on_book":24,"credit_limit":15000.0}`,
			fields: []string{"income"},
			types:  []string{"greater_than_equal"},
		},
		{
			name:   "wrong types",
			body:   `{"age":"old","income":true,"months_on_book":2.5,"credit_limit":null}`,
			fields: []string{"age", "income", "months_on_book", "credit_limit"},
			types:  []string{"int_type", "float_type", "int_from_float", "float_type"},
		},
		{
			name:   "every field reported in declaration order",
			body:   `{"credit_limit":-1,"months_on_book":-3,"age":7}`,
			fields: []string{"age", "income", "months_on_book", "credit_limit"},
			types:  []string{"greater_than_equal", "missing", "greater_than_equal", "greater_than_equal"},
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Parse([]byte(tt.body))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields())

			types := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				types = append(types, fe.Type)
			}
			assert.Equal(t, tt.types, types)
		})
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	v := NewValidator()
	for _, body := range []string{``, `null`, `[1,2]`, `{"age":`, `"x"`} {
		_, err := v.Parse([]byte(body))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, body)
		require.Len(t, verr.Errors, 1)
		assert.Equal(t, "json_invalid", verr.Errors[0].Type)
		assert.Equal(t, []string{"body"}, verr.Errors[0].Loc)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	v := NewValidator()
	body := []byte(`{"age":12,"income":-5,"credit_limit":"lots"}`)

	_, first := v.Parse(body)
	for i := 0; i < 5; i++ {
		_, again := v.Parse(body)
		assert.Equal(t, first, again)
	}
}

func TestValidateTyped(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(ClientFeatures{Age: 40, Income: 1, MonthsOnBook: 1, CreditLimit: 1}))

	err := v.Validate(ClientFeatures{Age: 17, Income: -1, MonthsOnBook: 0, CreditLimit: 0})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"age", "income"}, verr.Fields())
	assert.Equal(t, "Input should be greater than or equal to 18", verr.Errors[0].Msg)
	assert.Contains(t, err.Error(), "2 validation error(s)")
}
