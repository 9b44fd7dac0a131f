package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
)

type sample struct {
	Name    string             `json:"name" validate:"required,notblank,max=5"`
	Monthly map[string]float64 `json:"monthly" validate:"dive,keys,month,endkeys,gte=0"`
	Year    int                `form:"year" validate:"gte=2020,lte=2100"`
	Skipped string             `json:"-"`
}

func details(t *testing.T, err error) []apperror.FieldError {
	t.Helper()
	e, ok := apperror.As(err)
	require.True(t, ok)
	require.Equal(t, apperror.KindValidation, e.Kind)
	return e.Details
}

func TestValidate_OK(t *testing.T) {
	err := Validate(sample{Name: "ok", Monthly: map[string]float64{"1": 1}, Year: 2024})
	assert.NoError(t, err)
}

func TestValidate_UsesTagNames(t *testing.T) {
	err := Validate(sample{Name: "toolong", Year: 1999})

	d := details(t, err)
	require.Len(t, d, 2)
	assert.Equal(t, "name", d[0].Field)
	assert.Equal(t, "max", d[0].Kind)
	assert.Equal(t, "name must contain at most 5 characters", d[0].Message)
	assert.Equal(t, "year", d[1].Field)
	assert.Equal(t, "gte", d[1].Kind)
}

func TestValidate_BlankString(t *testing.T) {
	d := details(t, Validate(sample{Name: "  ", Year: 2024}))
	require.Len(t, d, 1)
	assert.Equal(t, "notblank", d[0].Kind)
	assert.Equal(t, "name is required", d[0].Message)
}

func TestValidate_MonthKeys(t *testing.T) {
	d := details(t, Validate(sample{Name: "a", Year: 2024, Monthly: map[string]float64{"0": 1}}))
	require.Len(t, d, 1)
	assert.Equal(t, "monthly[0]", d[0].Field)
	assert.Equal(t, "month", d[0].Kind)
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{" 12 ", 12, true},
		{"0", 0, false},
		{"13", 0, false},
		{"1.5", 0, false},
		{"jan", 0, false},
	}
	for _, tt := range tests {
		got, ok := MonthKey(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFromBindError(t *testing.T) {
	var target struct {
		Year int `json:"year"`
	}
	err := json.Unmarshal([]byte(`{"year":"soon"}`), &target)
	d := details(t, FromBindError(err))
	assert.Equal(t, "year", d[0].Field)
	assert.Equal(t, "type", d[0].Kind)

	err = json.Unmarshal([]byte(`{"year":`), &target)
	d = details(t, FromBindError(err))
	assert.Equal(t, "body", d[0].Field)

	d = details(t, FromBindError(errors.New("weird")))
	assert.Equal(t, "parse", d[0].Kind)
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.NoError(t, c.Err())

	c.Add("month", "type", "month must be a number")
	assert.NoError(t, c.Merge(Validate(sample{Name: "", Year: 1999})))
	assert.NoError(t, c.Merge(nil))

	other := errors.New("db down")
	assert.Equal(t, other, c.Merge(other))

	d := details(t, c.Err())
	assert.Len(t, d, 3)
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Has("month"))
}

func TestCollector_SkipsFieldsAlreadyReported(t *testing.T) {
	var c Collector
	c.Add("year", "type", "year must be an integer")
	require.NoError(t, c.Merge(Validate(sample{Name: "ok", Year: 0})))

	d := details(t, c.Err())
	require.Len(t, d, 1)
	assert.Equal(t, "type", d[0].Kind)
}

type bindSample struct {
	Name    string             `json:"name" validate:"required,notblank,max=5"`
	Year    int                `json:"year" validate:"required,gte=2020,lte=2100"`
	Monthly map[string]float64 `json:"monthly" validate:"omitempty,dive,keys,month,endkeys,gte=0"`
	Notes   *string            `json:"notes,omitempty" validate:"omitempty,max=10"`
}

func fieldsOf(d []apperror.FieldError) map[string]string {
	out := make(map[string]string, len(d))
	for _, fe := range d {
		out[fe.Field] = fe.Kind
	}
	return out
}

func TestBindJSON_OK(t *testing.T) {
	var out bindSample
	err := BindJSON([]byte(`{"name":"ok","YEAR":2024,"monthly":{"1":2.5},"notes":"n"}`), &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Name)
	assert.Equal(t, 2024, out.Year)
	assert.Equal(t, map[string]float64{"1": 2.5}, out.Monthly)
	require.NotNil(t, out.Notes)
	assert.Equal(t, "n", *out.Notes)
}

func TestBindJSON_TypeErrorsDoNotHideOtherViolations(t *testing.T) {
	var out bindSample
	err := BindJSON([]byte(`{"name":"","year":"2024","monthly":{"13":1},"notes":5}`), &out)

	fields := fieldsOf(details(t, err))
	assert.Equal(t, map[string]string{
		"year":        "type",
		"notes":       "type",
		"name":        "required",
		"monthly[13]": "month",
	}, fields)
	assert.Zero(t, out.Year)
	assert.Nil(t, out.Notes)
}

func TestBindJSON_MessageNamesExpectedType(t *testing.T) {
	var out bindSample
	d := details(t, BindJSON([]byte(`{"name":"ok","year":true}`), &out))
	require.Len(t, d, 1)
	assert.Equal(t, "year must be of type integer", d[0].Message)
}

func TestBindJSON_EmptyBodyValidatesZeroValue(t *testing.T) {
	var out bindSample
	fields := fieldsOf(details(t, BindJSON(nil, &out)))
	assert.Equal(t, map[string]string{"name": "required", "year": "required"}, fields)
}

func TestBindJSON_MalformedBody(t *testing.T) {
	var out bindSample
	d := details(t, BindJSON([]byte(`{"name":`), &out))
	require.Len(t, d, 1)
	assert.Equal(t, "body", d[0].Field)
	assert.Equal(t, "syntax", d[0].Kind)

	d = details(t, BindJSON([]byte(`[1,2]`), &out))
	require.Len(t, d, 1)
	assert.Equal(t, "body", d[0].Field)
	assert.Equal(t, "type", d[0].Kind)
}
