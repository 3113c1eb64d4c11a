package validator

import (
	"errors"
	"fmt"
	"strings"

	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"

	"github.com/go-playground/validator/v10"
)

type PropertyValidator struct {
	validate *validator.Validate
}

func NewPropertyValidator() *PropertyValidator {
	return &PropertyValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *PropertyValidator) ValidateCreate(property *model.Property) error {
	if err := v.validate.Struct(property); err != nil {
		return apperrors.Validation(formatValidationError(err), nil)
	}
	return nil
}

func (v *PropertyValidator) ValidateUpdate(update *model.PropertyUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return apperrors.Validation(formatValidationError(err), nil)
	}
	return nil
}

func (v *PropertyValidator) ValidateStatus(status string) error {
	switch status {
	case model.PropertyStatusPending,
		model.PropertyStatusApproved,
		model.PropertyStatusRejected,
		model.PropertyStatusAvailable,
		model.PropertyStatusAssigned,
		model.PropertyStatusBooked:
		return nil
	}
	return apperrors.Validation(fmt.Sprintf("invalid property status %q", status), nil)
}

func (v *PropertyValidator) ValidateFilter(filter *model.PropertyFilter) error {
	if filter.PriceMin != nil && *filter.PriceMin < 0 {
		return apperrors.Validation("price_min must not be negative", nil)
	}
	if filter.PriceMax != nil && *filter.PriceMax < 0 {
		return apperrors.Validation("price_max must not be negative", nil)
	}
	if filter.PriceMin != nil && filter.PriceMax != nil && *filter.PriceMin > *filter.PriceMax {
		return apperrors.Validation("price_min must not exceed price_max", nil)
	}
	for _, status := range filter.Statuses {
		if err := v.ValidateStatus(status); err != nil {
			return err
		}
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
