package attendance

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EnrollRequest is a student to enroll together with a photo of their face.
type EnrollRequest struct {
	StudentID   string `json:"student_id" validate:"required,max=20,printascii"`
	StudentName string `json:"student_name" validate:"required,max=50"`
	Image       []byte `json:"-" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// formatValidationError turns validator field errors into a single ErrInvalidIdentity.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		case "printascii":
			msgs = append(msgs, fe.Field()+" must contain printable ASCII only")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidIdentity, strings.Join(msgs, "; "))
}
