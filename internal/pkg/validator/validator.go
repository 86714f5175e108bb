package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
}

// RegisterJSONNames makes another validator instance, such as gin's binding
// engine, report JSON field names.
func RegisterJSONNames(engine any) {
	if v, ok := engine.(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// Validate struct fields, keyed by JSON field name.
func Validate(v interface{}) map[string]string {
	return Fields(validate.Struct(v))
}

// Fields flattens validation errors, including the ones gin binding returns,
// into field -> failed tag. Other errors yield nil.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if err == nil || !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[lowerFirst(fe.Field())] = fe.Tag()
	}
	return out
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
