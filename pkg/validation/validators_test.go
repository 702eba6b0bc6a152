package validation

import (
	"testing"

	"go-ats-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneHolder struct {
	Phone string `json:"phone" validate:"valid_phone"`
}

type dateHolder struct {
	Date string `json:"date" validate:"iso8601"`
}

func TestValidPhone(t *testing.T) {
	v := New()

	tests := []struct {
		phone string
		valid bool
	}{
		{"612345678", true},
		{"+34 600 123 456", true},
		{"(555) 123-4567", true},
		{"+1.202.555.0143", true},
		{"", true},
		{"abc", false},
		{"12ab34", false},
		{"(+34) 600", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			err := v.Struct(phoneHolder{Phone: tt.phone})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestISO8601(t *testing.T) {
	v := New()

	valid := []string{
		"2020-01-15",
		"2020-01-15T10:00:00Z",
		"2020-01-15T10:00:00.123+02:00",
		"2020-01-15T10:00:00",
		"2020-01",
		"2020-01-01T10:00:00+0100",
		"2020-01-01T10:00:00.5-0330",
		"20200101",
		"20200101T100000Z",
		"20200101T100000+0100",
	}
	for _, d := range valid {
		assert.NoError(t, v.Struct(dateHolder{Date: d}), d)
	}

	invalid := []string{"15/01/2020", "2020-13-01", "not a date", "2020-01-15T25:00:00Z", "20201301", "2020-01-01T10:00:00+01"}
	for _, d := range invalid {
		assert.Error(t, v.Struct(dateHolder{Date: d}), d)
	}
}

func TestParseISO8601(t *testing.T) {
	ts, err := ParseISO8601(" 2021-06-30 ")
	require.NoError(t, err)
	assert.Equal(t, 2021, ts.Year())
	assert.Equal(t, 30, ts.Day())

	_, err = ParseISO8601("yesterday")
	assert.Error(t, err)
}

type item struct {
	Name string `json:"name" validate:"required,min=2,max=5"`
}

type form struct {
	Email string `json:"email" validate:"required,email"`
	Items []item `json:"items" validate:"required,min=1,dive"`
}

func TestFormatValidationErrors_UsesJSONPaths(t *testing.T) {
	v := New()

	err := v.Struct(form{Email: "not-an-email", Items: []item{{Name: ""}, {Name: "toolong"}}})
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	assert.ElementsMatch(t, []apperror.FieldError{
		{Field: "email", Message: "email must be a valid email"},
		{Field: "items[0].name", Message: "name is required"},
		{Field: "items[1].name", Message: "name must be at most 5 characters"},
	}, errs)
}

func TestFormatValidationErrors_EmptySlice(t *testing.T) {
	v := New()

	errs := FormatValidationErrors(v.Struct(form{Email: "a@b.co", Items: []item{}}))
	require.Len(t, errs, 1)
	assert.Equal(t, "items", errs[0].Field)
	assert.Equal(t, "items must contain at least 1 item(s)", errs[0].Message)
}

func TestFormatValidationErrors_Nil(t *testing.T) {
	assert.Nil(t, FormatValidationErrors(nil))
}

func TestMerge_SkipsFieldsThatFailedNormalization(t *testing.T) {
	normalization := []apperror.FieldError{
		{Field: "education", Message: "education must be an array or a JSON-encoded array"},
		{Field: "tags[1]", Message: "tags[1] must be a string"},
	}
	rules := []apperror.FieldError{
		{Field: "education", Message: "education is required"},
		{Field: "education[0].title", Message: "title is required"},
		{Field: "firstName", Message: "firstName is required"},
	}

	merged := Merge(normalization, rules)
	assert.Equal(t, []apperror.FieldError{
		normalization[0],
		normalization[1],
		{Field: "firstName", Message: "firstName is required"},
	}, merged)

	assert.Equal(t, rules, Merge(nil, rules))
}
