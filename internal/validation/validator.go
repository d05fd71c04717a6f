package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"quizmaster/internal/domain"
	"quizmaster/internal/dto"
	"quizmaster/internal/util"
)

// Validator provides request validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance. Field names in errors use the
// JSON names clients sent, e.g. answers[0].questionId.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateID checks a path id. Ids are ULIDs.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errs = append(errs, domain.NewMissingFieldError(field))
	} else if !util.IsULID(id) {
		errs = append(errs, domain.NewInvalidFormatError(field, id))
	}
	return errs
}

// ValidateSubmitAttemptRequest validates the submit payload.
func (v *Validator) ValidateSubmitAttemptRequest(req *dto.SubmitAttemptRequest) domain.ValidationErrors {
	return v.translate(v.validate.Struct(req))
}

func (v *Validator) translate(err error) domain.ValidationErrors {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationErrors{{Field: "body", Code: string(domain.CodeInvalidInput), Message: err.Error()}}
	}

	errs := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		switch fe.Tag() {
		case "required":
			errs = append(errs, domain.NewMissingFieldError(field))
		case "max":
			errs = append(errs, domain.ValidationError{
				Field:   field,
				Code:    "OUT_OF_RANGE",
				Message: fmt.Sprintf("length must be at most %s", fe.Param()),
			})
		default:
			errs = append(errs, domain.NewInvalidFormatError(field, fe.Value()))
		}
	}
	return errs
}

// fieldPath drops the root struct name: "SubmitAttemptRequest.answers[0].questionId"
// becomes "answers[0].questionId".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
