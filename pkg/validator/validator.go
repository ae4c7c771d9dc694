package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookingapi/internal/domain"
)

// Validator checks intents and turns rule violations into domain validation
// errors.
type Validator struct {
	validate *validator.Validate
}

type dateRanged interface {
	Dates() domain.DateRange
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// domain.Date is validated as the time.Time it wraps, so "required"
	// rejects the zero day.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(domain.Date); ok {
			return d.Time
		}
		return nil
	}, domain.Date{})

	_ = v.RegisterValidation("usertype", func(fl validator.FieldLevel) bool {
		return domain.UserType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
		return domain.BookingStatus(fl.Field().String()).Valid()
	})

	return &Validator{validate: v}
}

// Struct validates the field rules of intent and, for intents that carry a
// date range, that the range is ordered.
func (v *Validator) Struct(intent interface{}) error {
	if err := v.validate.Struct(intent); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return &domain.Error{
				Kind:    domain.KindValidation,
				Message: formatFieldErrors(fieldErrs),
				Err:     err,
			}
		}
		return fmt.Errorf("intent validation failed: %w", err)
	}

	if ranged, ok := intent.(dateRanged); ok && !ranged.Dates().Valid() {
		return domain.ErrInvalidDateRange
	}

	return nil
}

func formatFieldErrors(fieldErrs validator.ValidationErrors) string {
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(messages, "|")
}
