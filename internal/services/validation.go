package services

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"bettybots/pkg/utils"
)

var validate = validator.New()

// validateInput maps the first failing field of in to its reason code.
func validateInput(in any, reasons map[string]string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return utils.NewValidationError(reasons[verrs[0].Field()])
	}
	return err
}
