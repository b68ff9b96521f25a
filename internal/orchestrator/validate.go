package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest wraps every validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// Validator wraps go-playground/validator with the request rules of this package and
// flattens its field errors into one readable message.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(uploadLevel, UploadRequest{})
	v.RegisterStructValidation(editLevel, EditRequest{})
	return &Validator{validate: v}
}

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return field + " is required when " + fe.Param()
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "nonempty":
		return field + " must not be empty"
	}
	return fmt.Sprintf("%s failed %q", field, fe.Tag())
}

func uploadLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(UploadRequest)
	if req.File != nil && (req.File.Name == "" || len(req.File.Data) == 0) {
		sl.ReportError(req.File, "File", "File", "nonempty", "")
	}
	if req.Cover != nil && (req.Cover.Name == "" || len(req.Cover.Data) == 0) {
		sl.ReportError(req.Cover, "Cover", "Cover", "nonempty", "")
	}
}

func editLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(EditRequest)
	if req.NewFile != nil && (req.NewFile.Name == "" || len(req.NewFile.Data) == 0) {
		sl.ReportError(req.NewFile, "NewFile", "NewFile", "nonempty", "")
	}
	if req.NewCover != nil && (req.NewCover.Name == "" || len(req.NewCover.Data) == 0) {
		sl.ReportError(req.NewCover, "NewCover", "NewCover", "nonempty", "")
	}
	if u := req.Update.Title; u != nil && strings.TrimSpace(*u) == "" {
		sl.ReportError(u, "Update.Title", "Title", "nonempty", "")
	}
	if s := req.Update.Status; s != nil {
		switch *s {
		case "pending", "approved", "rejected":
		default:
			sl.ReportError(s, "Update.Status", "Status", "oneof", "pending approved rejected")
		}
	}
	if req.ContentType == "audio" {
		if u := req.Update.Speaker; u != nil && strings.TrimSpace(*u) == "" {
			sl.ReportError(u, "Update.Speaker", "Speaker", "nonempty", "")
		}
		if u := req.Update.AudioType; u != nil && strings.TrimSpace(*u) == "" {
			sl.ReportError(u, "Update.AudioType", "AudioType", "nonempty", "")
		}
	}
}
