// Package validation wraps a shared go-playground/validator instance and
// translates its field errors into *domain.ValidationError values with
// user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/samirrijal/turismap/internal/core/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the singleton validator. Field names in errors are taken from
// json tags, then query tags, so messages name the wire field.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return validate
}

// Struct validates s and returns the first failing field as a
// *domain.ValidationError, or nil.
func Struct(s interface{}) error {
	return translate(Get().Struct(s))
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, v interface{}, tag string) error {
	err := Get().Var(v, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return domain.NewValidationError(field, message(field, fieldErrs[0]))
	}
	return domain.NewValidationError(field, err.Error())
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	return domain.NewValidationError(fe.Field(), message(fe.Field(), fe))
}

// fieldMessages overrides the generic templates for specific field/tag pairs.
var fieldMessages = map[string]string{
	"email.required":    "Email y contraseña son requeridos",
	"password.required": "Email y contraseña son requeridos",
	"email.email":       "Email inválido",
	"password.min":      "La contraseña debe tener al menos %s caracteres",
	"lat.required":      "Se requieren las coordenadas lat y lng",
	"lng.required":      "Se requieren las coordenadas lat y lng",
	"lat.latitude":      "Coordenadas inválidas. Lat debe estar entre -90 y 90, lng entre -180 y 180",
	"lng.longitude":     "Coordenadas inválidas. Lat debe estar entre -90 y 90, lng entre -180 y 180",
}

var tagMessages = map[string]string{
	"required":  "%s es obligatorio",
	"email":     "%s debe ser un email válido",
	"latitude":  "%s debe ser una latitud válida (-90 a 90)",
	"longitude": "%s debe ser una longitud válida (-180 a 180)",
	"min":       "%s debe tener al menos %s",
	"max":       "%s debe tener como máximo %s",
	"gt":        "%s debe ser mayor que %s",
	"lte":       "%s debe ser menor o igual que %s",
	"oneof":     "%s debe ser uno de: %s",
}

func message(field string, fe validator.FieldError) string {
	if tmpl, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		if strings.Contains(tmpl, "%") {
			return fmt.Sprintf(tmpl, fe.Param())
		}
		return tmpl
	}
	if tmpl, ok := tagMessages[fe.Tag()]; ok {
		if strings.Count(tmpl, "%s") == 2 {
			return fmt.Sprintf(tmpl, field, fe.Param())
		}
		return fmt.Sprintf(tmpl, field)
	}
	return fmt.Sprintf("%s no supera la validación %s", field, fe.Tag())
}
