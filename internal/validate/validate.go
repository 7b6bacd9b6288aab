// Package validate checks typed request structs with go-playground/validator
// and reports failures as apperr.ValidationError keyed by JSON field name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

// DateLayout is the accepted format of borrow dates.
const DateLayout = "2006-01-02"

var workstationCode = regexp.MustCompile(`(?i)^WSM\d+$`)

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("workstation_code", func(fl validator.FieldLevel) bool {
		return WorkstationCode(fl.Field().String())
	}))
	must(v.RegisterValidation("asset_status", func(fl validator.FieldLevel) bool {
		return model.ValidAssetStatus(fl.Field().String())
	}))
	must(v.RegisterValidation("assign_status", func(fl validator.FieldLevel) bool {
		return model.InServiceStatus(fl.Field().String())
	}))
	must(v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return validDepartment(fl.Field().String())
	}))
	must(v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.ValidRole(fl.Field().String())
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func validDepartment(s string) bool {
	for _, d := range model.EmployeeDepartments {
		if d == s {
			return true
		}
	}
	return false
}

// WorkstationCode reports whether s is WSM followed by one or more digits,
// ignoring case.
func WorkstationCode(s string) bool {
	return workstationCode.MatchString(s)
}

// NormalizeWorkstationID trims and uppercases a workstation code.
func NormalizeWorkstationID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Struct validates s. It returns nil or a *apperr.ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	out := &apperr.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "workstation_code":
		return field + " must be WSM followed by digits, e.g. WSM001"
	case "asset_status":
		return field + " must be one of: " + strings.Join(model.AssetStatuses, ", ")
	case "assign_status":
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field,
			model.StatusOnsite, model.StatusWFH, model.StatusTemporarilyDeployed)
	case "department":
		return field + " must be one of: " + strings.Join(model.EmployeeDepartments, ", ")
	case "role":
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field, model.RoleAdmin, model.RoleManager, model.RoleUser)
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// Borrow checks the borrow fields of an asset. When borrowed, the employee
// and both dates are required, dates are YYYY-MM-DD and the end date falls
// strictly after the start date. Failures are added to verr.
func Borrow(verr *apperr.ValidationError, isBorrowed bool, employeeID *int64, start, end *string) {
	if !isBorrowed {
		return
	}
	if employeeID == nil || *employeeID <= 0 {
		verr.Add("borrowEmployeeID", "borrowEmployeeID is required when the asset is borrowed")
	}

	startDate, startOK := parseDate(verr, "borrowStartDate", start)
	endDate, endOK := parseDate(verr, "borrowEndDate", end)
	if startOK && endOK && !endDate.After(startDate) {
		verr.Add("borrowEndDate", "borrowEndDate must be after borrowStartDate")
	}
}

func parseDate(verr *apperr.ValidationError, field string, s *string) (time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		verr.Add(field, field+" is required when the asset is borrowed")
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*s))
	if err != nil {
		verr.Add(field, field+" must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return t, true
}

// Merge combines a Struct result with extra field checks. It returns nil
// when neither reported a problem.
func Merge(structErr error, extra *apperr.ValidationError) error {
	if structErr == nil {
		if extra == nil || extra.Empty() {
			return nil
		}
		return extra
	}

	var verr *apperr.ValidationError
	if !errors.As(structErr, &verr) {
		return structErr
	}
	if extra != nil {
		for k, msg := range extra.Fields {
			verr.Add(k, msg)
		}
		if verr.General == "" {
			verr.General = extra.General
		}
	}
	return verr
}
