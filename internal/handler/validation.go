package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

// NewValidator returns a validator that understands decimal.Decimal fields
// through the decimal_gt, decimal_gte and decimal_scale tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("decimal_gt", decimalCompare(func(d, bound decimal.Decimal) bool { return d.GreaterThan(bound) }))
	_ = v.RegisterValidation("decimal_gte", decimalCompare(func(d, bound decimal.Decimal) bool { return d.GreaterThanOrEqual(bound) }))

	_ = v.RegisterValidation("decimal_scale", decimalScale)

	return v
}

// decimalScale rejects decimals with more fractional digits than the tag parameter.
func decimalScale(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	places, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return d.Equal(d.Round(int32(places)))
}

func decimalCompare(ok func(d, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return ok(d, bound)
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func (h *base) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.WrapValidation(fmt.Errorf("invalid request body: %w", err))
	}
	if err := h.validator.Struct(dst); err != nil {
		return customError.WrapValidation(describeValidation(err))
	}
	return nil
}

func describeValidation(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}
