// Package validation checks a single Person candidate field by field.
//
// Rules are validate-style tags run through go-playground/validator one at
// a time, so every broken rule of every field is reported, not only the
// first one per field. The checks never look at stored data; national
// code uniqueness belongs to the service.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aanand-mishra/persons-api/internal/errs"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/go-playground/validator/v10"
)

var nationalCodeRE = regexp.MustCompile(`^\d{10}$`)

type rule struct {
	tag     string
	message string
}

type field struct {
	name  string
	value func(types.Person) any
	rules []rule
}

// fields lists the checks in the order violations are reported.
var fields = []field{
	{
		name:  "firstName",
		value: func(p types.Person) any { return p.FirstName },
		rules: []rule{
			{"notblank", "First name is required."},
			{"max=50", "First name must not exceed 50 characters."},
		},
	},
	{
		name:  "lastName",
		value: func(p types.Person) any { return p.LastName },
		rules: []rule{
			{"notblank", "Last name is required."},
			{"max=50", "Last name must not exceed 50 characters."},
		},
	},
	{
		name:  "nationalCode",
		value: func(p types.Person) any { return p.NationalCode },
		rules: []rule{
			{"notblank", "National code is required."},
			{"len=10", "National code must be exactly 10 digits."},
			{"nationalcode", "National code must contain only digits."},
		},
	},
	{
		name:  "birthDate",
		value: func(p types.Person) any { return p.BirthDate },
		rules: []rule{
			{"past", "Birth date must be in the past."},
		},
	},
}

// Validator is stateless apart from its clock and safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New returns a Validator. now is the clock used by the birth-date rule;
// nil means time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	mustRegister(v.validate, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v.validate, "nationalcode", func(fl validator.FieldLevel) bool {
		return nationalCodeRE.MatchString(fl.Field().String())
	})
	mustRegister(v.validate, "past", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.Before(v.now())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Validate returns nil when p passes every rule, otherwise an
// errs.CodeValidationFailed error listing each violation as
// "field: message".
func (v *Validator) Validate(p types.Person) error {
	violations := v.Violations(p)
	if len(violations) == 0 {
		return nil
	}
	return errs.Validation(violations)
}

// Violations runs every rule and returns the messages of the failed ones.
func (v *Validator) Violations(p types.Person) []string {
	var out []string
	for _, f := range fields {
		value := f.value(p)
		for _, r := range f.rules {
			if err := v.validate.Var(value, r.tag); err != nil {
				out = append(out, f.name+": "+r.message)
			}
		}
	}
	return out
}
