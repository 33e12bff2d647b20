package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
)

var (
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup registers English translations and json field naming on gin's
// binding validator. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	})
}

// Struct validates obj against its binding tags
func Struct(obj interface{}) error {
	Setup()
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return ToValidationError(err)
	}
	return nil
}

// TranslateErrors maps each failing field to a human-readable message. A
// non-validation error is returned under the "detail" key.
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// ToValidationError converts a binding or validator error into an
// apperrors.ValidationError naming the first failing field.
func ToValidationError(err error) error {
	if err == nil {
		return nil
	}

	var existing *apperrors.ValidationError
	if errors.As(err, &existing) {
		return err
	}

	fields := TranslateErrors(err)
	if msg, ok := fields["detail"]; ok && len(fields) == 1 {
		return &apperrors.ValidationError{Message: "Invalid request: " + msg}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return &apperrors.ValidationError{
		Field:   names[0],
		Message: fields[names[0]],
		Fields:  fields,
	}
}
