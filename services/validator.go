package services

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"agrocontrol_app_go/models"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validation message codes, resolved through the i18n catalog
const (
	CodeRequired     = "validation.required"
	CodeMinLength    = "validation.min_length"
	CodeMaxLength    = "validation.max_length"
	CodeInteger      = "validation.integer"
	CodeNumber       = "validation.number"
	CodeMinValue     = "validation.min_value"
	CodeMinExclusive = "validation.min_exclusive"
	CodeMaxValue     = "validation.max_value"
	CodeDate         = "validation.date"
	CodeTime         = "validation.time"
	CodeEmail        = "validation.email"
	CodePositiveID   = "validation.positive_id"
	CodeReference    = "validation.reference"
	CodePhoto        = "validation.photo"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	validate  = validator.New()
	sanitizer = bluemonday.StrictPolicy()
)

// StringRules constrain a text value. Zero lengths mean no limit.
type StringRules struct {
	Required  bool
	MinLength int
	MaxLength int
}

// NumberRules constrain a numeric value. MaxLength applies to the raw input.
type NumberRules struct {
	Required  bool
	Min       *float64
	Max       *float64
	MinOpen   bool
	MaxLength int
}

// ValidateString trims the value and checks presence and length. An empty
// value that is allowed comes back as "".
func ValidateString(value interface{}, field FieldRef, rules StringRules) (string, error) {
	s := strings.TrimSpace(toText(value))
	if s == "" {
		if rules.Required {
			return "", required(field)
		}
		return "", nil
	}

	n := utf8.RuneCountInString(s)
	if rules.MinLength > 0 && n < rules.MinLength {
		return "", newValidationError(field, CodeMinLength,
			fmt.Sprintf("debe tener al menos %d caracteres", rules.MinLength),
			map[string]interface{}{"min": rules.MinLength})
	}
	if rules.MaxLength > 0 && n > rules.MaxLength {
		return "", newValidationError(field, CodeMaxLength,
			fmt.Sprintf("no puede tener más de %d caracteres", rules.MaxLength),
			map[string]interface{}{"max": rules.MaxLength})
	}
	return s, nil
}

// ValidateInteger parses a whole number. An empty value that is allowed
// comes back as nil.
func ValidateInteger(value interface{}, field FieldRef, rules NumberRules) (*int64, error) {
	s := strings.TrimSpace(toText(value))
	if s == "" {
		if rules.Required {
			return nil, required(field)
		}
		return nil, nil
	}
	if err := checkRawLength(s, field, rules.MaxLength); err != nil {
		return nil, err
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, newValidationError(field, CodeInteger, "debe ser un número entero válido", nil)
	}
	if err := checkRange(float64(n), field, rules); err != nil {
		return nil, err
	}
	return &n, nil
}

// ValidateFloat parses a decimal number. An empty value that is allowed
// comes back as nil.
func ValidateFloat(value interface{}, field FieldRef, rules NumberRules) (*float64, error) {
	s := strings.TrimSpace(toText(value))
	if s == "" {
		if rules.Required {
			return nil, required(field)
		}
		return nil, nil
	}
	if err := checkRawLength(s, field, rules.MaxLength); err != nil {
		return nil, err
	}

	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, newValidationError(field, CodeNumber, "debe ser un número válido", nil)
	}
	if err := checkRange(f, field, rules); err != nil {
		return nil, err
	}
	return &f, nil
}

// ValidateDate accepts YYYY-MM-DD
func ValidateDate(value interface{}, field FieldRef, isRequired bool) (string, error) {
	s := strings.TrimSpace(toText(value))
	if s == "" {
		if isRequired {
			return "", required(field)
		}
		return "", nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", newValidationError(field, CodeDate, "debe ser una fecha válida (AAAA-MM-DD)", nil)
	}
	return s, nil
}

// ValidateTime accepts HH:MM, and HH:MM:SS as returned by MySQL TIME columns
func ValidateTime(value interface{}, field FieldRef, isRequired bool) (string, error) {
	s := strings.TrimSpace(toText(value))
	if s == "" {
		if isRequired {
			return "", required(field)
		}
		return "", nil
	}
	if len(s) == 8 && strings.Count(s, ":") == 2 {
		s = s[:5]
	}
	if _, err := time.Parse(timeLayout, s); err != nil {
		return "", newValidationError(field, CodeTime, "debe ser una hora válida (HH:MM)", nil)
	}
	return s, nil
}

// ValidateEmail checks the address format
func ValidateEmail(value interface{}, field FieldRef, rules StringRules) (string, error) {
	s, err := ValidateString(value, field, rules)
	if err != nil || s == "" {
		return s, err
	}
	if err := validate.Var(s, "email"); err != nil {
		return "", newValidationError(field, CodeEmail, "debe ser un correo electrónico válido", nil)
	}
	return s, nil
}

// ValidateID accepts only positive integer identifiers
func ValidateID(value interface{}) (int64, error) {
	field := FieldRef{Name: "ID", Label: "ID"}
	s := strings.TrimSpace(toText(value))
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, newValidationError(field, CodePositiveID, "debe ser un número positivo", nil)
	}
	return id, nil
}

// ValidateField applies the schema rules of one field and returns the value
// ready to be bound as a SQL parameter (nil for empty optional values).
func ValidateField(f models.FieldSchema, value interface{}) (interface{}, error) {
	ref := FieldRef{Name: f.Name, Label: f.Label}
	strRules := StringRules{Required: f.Required, MaxLength: f.MaxLength}
	numRules := NumberRules{Required: f.Required, Min: f.Min, Max: f.Max, MinOpen: f.MinOpen, MaxLength: f.MaxLength}

	var (
		out interface{}
		err error
	)
	switch f.Kind {
	case models.KindInt:
		var n *int64
		if n, err = ValidateInteger(value, ref, numRules); err == nil && n != nil {
			out = *n
		}
	case models.KindFloat:
		var n *float64
		if n, err = ValidateFloat(value, ref, numRules); err == nil && n != nil {
			out = *n
		}
	case models.KindDate:
		var s string
		if s, err = ValidateDate(value, ref, f.Required); err == nil && s != "" {
			out = s
		}
	case models.KindTime:
		var s string
		if s, err = ValidateTime(value, ref, f.Required); err == nil && s != "" {
			out = s
		}
	case models.KindEmail:
		var s string
		if s, err = ValidateEmail(value, ref, strRules); err == nil && s != "" {
			out = s
		}
	case models.KindText:
		// markup is stripped, plain text kept verbatim
		var s string
		if s, err = ValidateString(value, ref, strRules); err == nil && s != "" {
			out = stripMarkup(s)
		}
	default:
		var s string
		if s, err = ValidateString(value, ref, strRules); err == nil && s != "" {
			out = s
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateRecord runs every field of the schema against the input and stops
// at the first failure. Keys are matched case-insensitively by field name or
// column; unknown keys are ignored.
func ValidateRecord(schema models.EntitySchema, input map[string]interface{}) (models.Record, error) {
	record := models.Record{}
	for _, f := range schema.Editable() {
		v, err := ValidateField(f, lookup(input, f))
		if err != nil {
			return nil, err
		}
		record[f.Name] = v
	}
	return record, nil
}

// ValidateRecordAll is ValidateRecord collecting every failure instead of
// stopping at the first one.
func ValidateRecordAll(schema models.EntitySchema, input map[string]interface{}) (models.Record, []*ValidationError) {
	record := models.Record{}
	var failures []*ValidationError
	for _, f := range schema.Editable() {
		v, err := ValidateField(f, lookup(input, f))
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				failures = append(failures, ve)
			}
			continue
		}
		record[f.Name] = v
	}
	return record, failures
}

// stripMarkup removes tags and keeps the text as typed. Ampersands are
// escaped first so entity text the user wrote is not decoded into markup.
func stripMarkup(s string) string {
	clean := sanitizer.Sanitize(strings.ReplaceAll(s, "&", "&amp;"))
	return strings.TrimSpace(html.UnescapeString(clean))
}

func lookup(input map[string]interface{}, f models.FieldSchema) interface{} {
	if v, ok := input[f.Name]; ok {
		return v
	}
	for k, v := range input {
		if strings.EqualFold(k, f.Name) || strings.EqualFold(k, f.ColumnName()) {
			return v
		}
	}
	return nil
}

func required(field FieldRef) error {
	return newValidationError(field, CodeRequired, "es requerido", nil)
}

func checkRawLength(s string, field FieldRef, max int) error {
	if max > 0 && utf8.RuneCountInString(s) > max {
		return newValidationError(field, CodeMaxLength,
			fmt.Sprintf("no puede tener más de %d caracteres", max),
			map[string]interface{}{"max": max})
	}
	return nil
}

func checkRange(v float64, field FieldRef, rules NumberRules) error {
	if rules.Min != nil {
		lo := *rules.Min
		if rules.MinOpen && v <= lo {
			return newValidationError(field, CodeMinExclusive,
				fmt.Sprintf("debe ser mayor a %s", formatNumber(lo)),
				map[string]interface{}{"min": formatNumber(lo)})
		}
		if v < lo {
			return newValidationError(field, CodeMinValue,
				fmt.Sprintf("debe ser mayor o igual a %s", formatNumber(lo)),
				map[string]interface{}{"min": formatNumber(lo)})
		}
	}
	if rules.Max != nil && v > *rules.Max {
		return newValidationError(field, CodeMaxValue,
			fmt.Sprintf("debe ser menor o igual a %s", formatNumber(*rules.Max)),
			map[string]interface{}{"max": formatNumber(*rules.Max)})
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toText renders a form or JSON value as the string the validators parse
func toText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		return v.Format(dateLayout)
	default:
		return fmt.Sprint(v)
	}
}
