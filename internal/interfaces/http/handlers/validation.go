package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/interfaces/http/response"
)

const minPasswordLength = 6

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
	mobilePattern   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom binding tags used by request inputs
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		for tag, fn := range map[string]validator.Func{
			"username": validUsername,
			"password": validPassword,
			"mobile":   validMobile,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("register %s validator: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

func validUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < minPasswordLength || len(pw) > 72 {
		return false
	}
	return strings.IndexFunc(pw, unicode.IsDigit) >= 0
}

func validMobile(fl validator.FieldLevel) bool {
	return mobilePattern.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
}

// bindJSON decodes and validates the body, answering 400 when it is unusable
func bindJSON(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		response.Error(c, domainerrors.BadRequest(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "username":
		return field + " must be 3-30 characters of letters, digits, _ or -"
	case "password":
		return fmt.Sprintf("%s must be at least %d characters and contain a digit", field, minPasswordLength)
	case "mobile":
		return field + " must be a valid phone number"
	case "eqfield":
		return field + " must match " + lowerFirst(fe.Param())
	case "min", "max", "gt":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "oneof":
		return field + " must be one of: " + fe.Param()
	}
	return field + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
