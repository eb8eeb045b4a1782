package dto

import (
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/ze-parceiro/simulator_api/engine"
)

var validate *validator.Validate

var participantCodeRegex = regexp.MustCompile(`^[\p{L}0-9._@+\- ]{1,64}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("participant_code", validateParticipantCode)
	validate.RegisterValidation("direction", validateDirection)
	validate.RegisterValidation("speed_step", validateSpeedStep)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateParticipantCode(fl validator.FieldLevel) bool {
	return participantCodeRegex.MatchString(fl.Field().String())
}

func validateDirection(fl validator.FieldLevel) bool {
	_, ok := engine.ParseDirection(fl.Field().String())
	return ok
}

// speed moves in quarter steps
func validateSpeedStep(fl validator.FieldLevel) bool {
	steps := fl.Field().Float() * 4
	return steps == math.Trunc(steps)
}

type ValidationError struct {
	Field   string `json:"field" example:"code"`
	Message string `json:"message" example:"code is required"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code" example:"400"`
	Message string            `json:"message" example:"Validation failed"`
	Errors  []ValidationError `json:"errors"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		if err != nil {
			errors = append(errors, ValidationError{Message: err.Error()})
		}
		return errors
	}

	for _, fieldError := range validationErrors {
		var message string

		switch fieldError.Tag() {
		case "required":
			message = fieldError.Field() + " is required"
		case "min":
			message = fieldError.Field() + " must be at least " + fieldError.Param()
		case "max":
			message = fieldError.Field() + " must be at most " + fieldError.Param()
		case "gte":
			message = fieldError.Field() + " must be greater than or equal to " + fieldError.Param()
		case "lte":
			message = fieldError.Field() + " must be less than or equal to " + fieldError.Param()
		case "participant_code":
			message = "Code may only contain letters, numbers, spaces and . _ @ + -"
		case "direction":
			message = "Direction must be one of: up, down, left, right"
		case "speed_step":
			message = "Speed must be a multiple of 0.25"
		default:
			message = fieldError.Field() + " is invalid"
		}

		errors = append(errors, ValidationError{
			Field:   fieldError.Field(),
			Message: message,
		})
	}

	return errors
}

type Validator interface {
	Validate() error
}

func CreateValidationErrorResponse(err error) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    400,
		Message: "Validation failed",
		Errors:  FormatValidationErrors(err),
	}
}
