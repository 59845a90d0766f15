package validator

import (
	"log"
	"strings"

	"jobportal_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует правила для статусов и типов из models
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// без правила приложение запускать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-application-status", validateApplicationStatus)
	mustRegister("is-interview-kind", validateInterviewKind)
	mustRegister("is-message-kind", validateMessageKind)
}

// Пустые значения пропускаем, для них есть 'required'

func validateApplicationStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseApplicationStatus(value)
	return ok
}

func validateInterviewKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.InterviewKind(strings.ToLower(value)).Valid()
}

func validateMessageKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.MessageKind(strings.ToLower(value)).Valid()
}
