// Package validators holds the struct validator shared by the per-area request
// validators. Each area package exposes fiber handlers that parse the body, run
// the rules declared in `validate` tags and stash the typed request in c.Locals.
package validators

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"learnhub/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// report json names so field errors match the request body
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("httpurl", isHTTPURL)
	})
	return validate
}

// httpurl accepts absolute http and https URLs only.
func isHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateStruct runs the struct rules and returns one FieldError per failing field.
func ValidateStruct(s interface{}) []middleware.FieldError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []middleware.FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]middleware.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, middleware.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace ("Req.lessons[0].title").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", "required_without":
		return label + " is required"
	case "email":
		return "Invalid email address"
	case "url", "httpurl":
		return label + " must be a valid http(s) URL"
	case "oneof":
		return fmt.Sprintf("Invalid %s! Allowed: %s", strings.ToLower(label), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "dive":
		return label + " is invalid"
	default:
		return fmt.Sprintf("%s failed the %s check", label, fe.Tag())
	}
}

// humanize turns "maxAttendees" into "Max attendees".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		case r == '_':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseID reads a positive integer route parameter.
func ParseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IDParam validates the route parameter name and stores it in c.Locals(name).
func IDParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ParseID(c, name)
		if !ok {
			return middleware.ValidationErrorResponse(c, []middleware.FieldError{
				{Field: name, Message: "Invalid " + name},
			})
		}
		c.Locals(name, id)
		return c.Next()
	}
}

// TrimPtr trims the string behind p when set.
func TrimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}
