package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/bellapacxx/academy-backend/game"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("suit", func(fl validator.FieldLevel) bool {
		return game.ValidSuit(fl.Field().String())
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// errParse is returned for request bodies that are not valid JSON or form data.
type errParse struct{ err error }

func (e errParse) Error() string { return "JSON parse error - " + e.err.Error() }

// bindingError turns a gin binding failure into the error shape the
// controllers report to clients.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &services.ValidationError{}
		for _, fe := range verrs {
			out.Add(fieldPath(fe.Namespace()), fieldMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		out := &services.ValidationError{}
		out.Add(typeErr.Field, fmt.Sprintf("Expected a value of type %s.", typeErr.Type))
		return out
	}
	return errParse{err: err}
}

// fieldPath drops the root struct name from a validator namespace, so
// "GameStateInput.cards[2].suit" becomes "cards[2].suit".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "suit":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	}
	return "Invalid value."
}

// isEmptyBody reports whether binding failed only because the body was empty.
func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
