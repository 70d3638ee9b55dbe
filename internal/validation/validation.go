// Package validation runs the `binding` struct-tag rules shared with gin and
// turns failures into field errors keyed by JSON names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
)

var once sync.Once

func init() {
	// gin binds with the same engine; configure it before any request.
	Engine()
}

// Engine returns gin's validator with JSON field names and the custom rules
// (notblank, car_year, media_type) registered.
func Engine() *validator.Validate {
	v := binding.Validator.Engine().(*validator.Validate)
	once.Do(func() {
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("car_year", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() <= int64(time.Now().Year()+1)
		})
		_ = v.RegisterValidation("media_type", func(fl validator.FieldLevel) bool {
			switch db.MediaType(strings.ToUpper(fl.Field().String())) {
			case db.MediaThumbnail, db.MediaImage, db.MediaVideo:
				return true
			}
			return false
		})
	})
	return v
}

// Struct validates obj and returns an InvalidArgument error listing every
// failing field, or nil.
func Struct(obj any) error {
	if err := Engine().Struct(obj); err != nil {
		return Translate(err)
	}
	return nil
}

// Translate converts validator failures into an InvalidArgument error.
// Any other error is returned unchanged.
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]svcErr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, svcErr.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return svcErr.InvalidArgument("invalid request body", fields...)
}

// fieldPath drops the root struct name: "CreateAdInput.media[0].public_id"
// becomes "media[0].public_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "car_year":
		return fmt.Sprintf("must not be later than %d", time.Now().Year()+1)
	case "media_type":
		return "must be THUMBNAIL, IMAGE or VIDEO"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed the " + fe.Tag() + " rule"
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}
