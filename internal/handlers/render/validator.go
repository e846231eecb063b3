package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/token"
)

// Tag for fields holding compact tokens: three segments and an 'exp' claim
const tagCompactToken = "compacttoken"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(tagCompactToken, validateCompactToken)
	v.RegisterTagNameFunc(useJSONTagNames)
	return v
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Expiration is not checked here: an expired token is still a well formed one
func validateCompactToken(fl validator.FieldLevel) bool {
	_, err := token.Decode(fl.Field().String())
	return err == nil
}
