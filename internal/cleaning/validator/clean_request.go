package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"custclean/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

// Details is the form attached to an HTTP validation error.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

type CleanRequestValidator struct {
	validate     *validator.Validate
	maxTableRows int
}

func NewCleanRequestValidator(maxTableRows int) *CleanRequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &CleanRequestValidator{
		validate:     v,
		maxTableRows: maxTableRows,
	}
}

func (v *CleanRequestValidator) Validate(req *model.CleanRequest) error {
	if req == nil {
		return ValidationErrors{{Field: "request", Message: "is required"}}
	}

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(req)
}

func (v *CleanRequestValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = "is required"
		case "oneof":
			message = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(err.Param(), " ", ", "))
		default:
			message = fmt.Sprintf("failed the '%s' check", err.Tag())
		}
		validationErrors = append(validationErrors, ValidationError{
			Field:   strings.TrimPrefix(err.Namespace(), "CleanRequest."),
			Message: message,
		})
	}

	return validationErrors
}

func (v *CleanRequestValidator) validateBusinessRules(req *model.CleanRequest) error {
	var errs ValidationErrors

	if err := req.Table.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "table", Message: err.Error()})
	}
	if v.maxTableRows > 0 && req.Table.Len() > v.maxTableRows {
		errs = append(errs, ValidationError{
			Field:   "table.rows",
			Message: fmt.Sprintf("must not exceed %d rows, got %d", v.maxTableRows, req.Table.Len()),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
