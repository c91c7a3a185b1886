// Package validation wraps a singleton go-playground validator and turns its
// failures into the field to message map returned in 400 responses.
//
//	type registerRequest struct {
//	    Email string `json:"email" validate:"required,email"`
//	    Phone string `json:"phone" validate:"required,phone"`
//	}
//
//	if fields := validation.Struct(&req); fields != nil {
//	    // fields["phone"] == "Phone number must be 10 digits"
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/arzan03/CampusKart/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// Validator returns the shared instance with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json names so messages match the request body.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		mustRegister("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		mustRegister("condition", func(fl validator.FieldLevel) bool {
			return slices.Contains(models.Conditions, fl.Field().String())
		})
		mustRegister("category", func(fl validator.FieldLevel) bool {
			_, ok := models.CategorySlug(fl.Field().String())
			return ok
		})
		mustRegister("status", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case models.StatusActive, models.StatusSold, models.StatusInactive:
				return true
			}
			return false
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// Struct validates s and returns nil or a map of json field name to message.
func Struct(s any) map[string]string {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email"
	case "phone":
		return "Phone number must be 10 digits"
	case "condition":
		return "Condition must be one of: " + strings.Join(models.Conditions, ", ")
	case "category":
		return "Category must be one of: " + strings.Join(models.CategorySlugs(), ", ")
	case "status":
		return "Status must be one of: active, sold, inactive"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", label, fe.Param())
	case "url", "http_url":
		return label + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

// humanize turns "profile_picture_url" into "Profile picture url".
func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
