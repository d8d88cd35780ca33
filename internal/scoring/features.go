package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ClientFeatures is the applicant profile the scorer consumes.
// Range rules live in the validate tags; presence and JSON types are
// checked by Validator.Parse.
type ClientFeatures struct {
	Age          int     `json:"age" validate:"gte=18,lte=100"`
	Income       float64 `json:"income" validate:"gte=0"`
	MonthsOnBook int     `json:"months_on_book" validate:"gte=0"`
	CreditLimit  float64 `json:"credit_limit" validate:"gte=0"`
}

// FieldError describes one violated constraint.
type FieldError struct {
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Type  string   `json:"type"`
	Input any      `json:"input,omitempty"`
}

// Field returns the name of the offending field, or "" for body-level errors.
func (e FieldError) Field() string {
	if len(e.Loc) < 2 {
		return ""
	}
	return e.Loc[len(e.Loc)-1]
}

// ValidationError lists every constraint the input violated.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		loc := strings.Join(fe.Loc, ".")
		parts = append(parts, loc+": "+fe.Msg)
	}
	return fmt.Sprintf("%d validation error(s): %s", len(e.Errors), strings.Join(parts, "; "))
}

// Fields returns the violated field names in declaration order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Field())
	}
	return out
}

type featureField struct {
	name   string
	decode func(f *ClientFeatures, raw json.RawMessage) *FieldError
}

var featureFields = []featureField{
	{name: "age", decode: func(f *ClientFeatures, raw json.RawMessage) *FieldError {
		v, fe := decodeInt("age", raw)
		f.Age = v
		return fe
	}},
	{name: "income", decode: func(f *ClientFeatures, raw json.RawMessage) *FieldError {
		v, fe := decodeFloat("income", raw)
		f.Income = v
		return fe
	}},
	{name: "months_on_book", decode: func(f *ClientFeatures, raw json.RawMessage) *FieldError {
		v, fe := decodeInt("months_on_book", raw)
		f.MonthsOnBook = v
		return fe
	}},
	{name: "credit_limit", decode: func(f *ClientFeatures, raw json.RawMessage) *FieldError {
		v, fe := decodeFloat("credit_limit", raw)
		f.CreditLimit = v
		return fe
	}},
}

var fieldOrder = func() map[string]int {
	m := make(map[string]int, len(featureFields))
	for i, ff := range featureFields {
		m[ff.name] = i
	}
	return m
}()

// Validator turns raw request bodies into ClientFeatures. It holds no
// per-request state and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Parse decodes a JSON object into ClientFeatures. Missing fields, wrong
// types and out-of-range values are all collected into a single
// *ValidationError; no partially valid result is ever returned.
func (v *Validator) Parse(body []byte) (ClientFeatures, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return ClientFeatures{}, &ValidationError{Errors: []FieldError{{
			Loc:  []string{"body"},
			Msg:  "Input should be a valid JSON object",
			Type: "json_invalid",
		}}}
	}

	var f ClientFeatures
	var errs []FieldError
	broken := make(map[string]bool)
	for _, ff := range featureFields {
		msg, ok := raw[ff.name]
		if !ok {
			errs = append(errs, FieldError{Loc: fieldLoc(ff.name), Msg: "Field required", Type: "missing"})
			broken[ff.name] = true
			continue
		}
		if fe := ff.decode(&f, msg); fe != nil {
			errs = append(errs, *fe)
			broken[ff.name] = true
		}
	}

	errs = append(errs, v.rangeErrors(f, broken)...)
	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool {
			return fieldOrder[errs[i].Field()] < fieldOrder[errs[j].Field()]
		})
		return ClientFeatures{}, &ValidationError{Errors: errs}
	}
	return f, nil
}

// Validate checks the range rules of an already typed value.
func (v *Validator) Validate(f ClientFeatures) error {
	if errs := v.rangeErrors(f, nil); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func (v *Validator) rangeErrors(f ClientFeatures, skip map[string]bool) []FieldError {
	err := v.validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		if skip[fe.Field()] {
			continue
		}
		out = append(out, rangeFieldError(fe))
	}
	return out
}

func rangeFieldError(fe validator.FieldError) FieldError {
	out := FieldError{Loc: fieldLoc(fe.Field()), Input: fe.Value()}
	switch fe.Tag() {
	case "gte":
		out.Type = "greater_than_equal"
		out.Msg = "Input should be greater than or equal to " + fe.Param()
	case "lte":
		out.Type = "less_than_equal"
		out.Msg = "Input should be less than or equal to " + fe.Param()
	default:
		out.Type = fe.Tag()
		out.Msg = fe.Error()
	}
	return out
}

func fieldLoc(name string) []string {
	return []string{"body", name}
}

func numberOf(raw json.RawMessage) (json.Number, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}

// decodeInt accepts JSON integers and integral floats such as 35.0.
func decodeInt(name string, raw json.RawMessage) (int, *FieldError) {
	n, ok := numberOf(raw)
	if !ok {
		return 0, &FieldError{Loc: fieldLoc(name), Msg: "Input should be a valid integer", Type: "int_type", Input: raw}
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err == nil && f != math.Trunc(f) {
		return 0, &FieldError{Loc: fieldLoc(name), Msg: "Input should be a valid integer, got a number with a fractional part", Type: "int_from_float", Input: raw}
	}
	if err == nil && math.Abs(f) <= 1<<53 {
		return int(f), nil
	}
	return 0, &FieldError{Loc: fieldLoc(name), Msg: "Input should be a valid integer, unable to parse", Type: "int_parsing", Input: raw}
}

func decodeFloat(name string, raw json.RawMessage) (float64, *FieldError) {
	n, ok := numberOf(raw)
	if !ok {
		return 0, &FieldError{Loc: fieldLoc(name), Msg: "Input should be a valid number", Type: "float_type", Input: raw}
	}
	f, err := n.Float64()
	if err != nil {
		return 0, &FieldError{Loc: fieldLoc(name), Msg: "Input should be a finite number", Type: "finite_number", Input: raw}
	}
	return f, nil
}
