package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one failed rule on one field. Field carries the
// JSON name of the struct field so handlers can echo it back to API clients.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors collects every failed rule from a single ValidateStruct call.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	for i, failure := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(failure.Field)
		b.WriteString(" failed on ")
		b.WriteString(failure.Tag)
		if failure.Param != "" {
			b.WriteString("=")
			b.WriteString(failure.Param)
		}
	}
	return b.String()
}

var instance = struct {
	once sync.Once
	v    *validator.Validate
}{}

// ValidateStruct runs the registered rules against s. Rule failures come back
// as ValidationErrors; anything else (nil input, non-struct) is returned as-is.
func ValidateStruct(s interface{}) error {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

// RegisterValidation adds a custom rule, such as a role whitelist, to the
// shared validator.
func RegisterValidation(tag string, fn validator.Func) error {
	return shared().RegisterValidation(tag, fn)
}

func shared() *validator.Validate {
	instance.once.Do(func() {
		instance.v = validator.New()
		instance.v.RegisterTagNameFunc(jsonFieldName)
	})
	return instance.v
}

// jsonFieldName resolves a struct field to its json tag name, falling back to
// the Go field name when the tag is absent or suppressed with "-".
func jsonFieldName(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
