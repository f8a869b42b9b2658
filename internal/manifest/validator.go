package manifest

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	usageerrors "github.com/alexisbeaulieu97/openusage/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// ids key the per-plugin data directory, so they must be a single path segment.
	pluginIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("plugin_id", func(fl validator.FieldLevel) bool {
			id := fl.Field().String()
			return pluginIDPattern.MatchString(id) && !strings.Contains(id, "..")
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks the structural rules of a manifest. Path rules are applied
// by the loader because they need the bundle's root directory.
func Validate(m *PluginManifest) error {
	if m == nil {
		return usageerrors.NewValidationError("manifest", "manifest is nil", nil)
	}
	if err := validatorInstance().Struct(m); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := fieldPath(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return usageerrors.NewValidationError(field, msg, err)
	}

	return usageerrors.NewValidationError("manifest", err.Error(), err)
}

// fieldPath drops the root struct name from the json-tagged namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}
