package validator

import (
	"errors"
	"fmt"
	"strings"

	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	return &BookingValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *BookingValidator) ValidateRequest(request *model.BookingRequest) error {
	if err := v.validate.Struct(request); err != nil {
		return apperrors.Validation(formatValidationError(err), nil)
	}
	return nil
}

func (v *BookingValidator) ValidateDecision(decision *model.BookingDecision) error {
	if err := v.validate.Struct(decision); err != nil {
		return apperrors.Validation(formatValidationError(err), nil)
	}
	return nil
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("field %q failed on the %q rule", fieldErr.Field(), fieldErr.Tag()))
	}
	return strings.Join(messages, "; ")
}
