// Package validation checks request fields against declarative constraint
// tables.
//
// A Schema lists, per field, the constraints its value must satisfy. Callers
// hand in the field values explicitly (no struct tags, no reflection):
//
//	errs := validation.Book.Validate(map[string]*string{
//		"title":       payload.Title,
//		"description": payload.Description,
//	})
//
// Validate checks every rule of the schema; ValidatePresent checks only the
// fields whose value is non-nil, which is what merge-patch requests need.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Constraint is a single named check on an optional string value.
// Code is reported back to clients as the field error message.
type Constraint struct {
	Code  string
	Check func(value *string) bool
}

// NotNull rejects absent values.
func NotNull() Constraint {
	return Constraint{
		Code:  "NotNull",
		Check: func(value *string) bool { return value != nil },
	}
}

// Size bounds the length in characters of a present value, inclusive.
// Absent values pass; combine with NotNull to require the field.
func Size(min, max int) Constraint {
	return Constraint{
		Code: "Size",
		Check: func(value *string) bool {
			if value == nil {
				return true
			}
			n := utf8.RuneCountInString(*value)
			return n >= min && n <= max
		},
	}
}

// Rule binds constraints to a field name.
type Rule struct {
	Field       string
	Constraints []Constraint
}

// Schema is the constraint table for one object type.
type Schema struct {
	Object string
	Rules  []Rule
}

// FieldError describes one failed constraint.
type FieldError struct {
	ObjectName string `json:"objectName"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// Errors is the set of constraint failures for a request. A nil Errors means valid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s.%s: %s", fe.ObjectName, fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validate checks every rule against values. Missing map entries count as absent.
func (s Schema) Validate(values map[string]*string) Errors {
	return s.check(values, false)
}

// ValidatePresent checks only the fields that carry a non-nil value.
func (s Schema) ValidatePresent(values map[string]*string) Errors {
	return s.check(values, true)
}

func (s Schema) check(values map[string]*string, presentOnly bool) Errors {
	var errs Errors
	for _, rule := range s.Rules {
		value := values[rule.Field]
		if presentOnly && value == nil {
			continue
		}
		for _, c := range rule.Constraints {
			if !c.Check(value) {
				errs = append(errs, FieldError{ObjectName: s.Object, Field: rule.Field, Message: c.Code})
				// One failure per field is enough
				break
			}
		}
	}
	return errs
}

// Book is the constraint table for book create/update/patch payloads.
var Book = Schema{
	Object: "book",
	Rules: []Rule{
		{Field: "title", Constraints: []Constraint{
			NotNull(),
			Size(entities.BookTitleMinLength, entities.BookTitleMaxLength),
		}},
		{Field: "description"},
	},
}
