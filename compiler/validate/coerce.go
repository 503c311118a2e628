package validate

import (
	"fmt"
	"math"
	"net"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema/field"
)

// coerceType normalizes an untyped input into the canonical Go value
// of the field type. Numeric values land on int64/uint64/float64,
// temporal values on time.Time/time.Duration, decimals on
// decimal.Decimal, identifiers on uuid.UUID.
func coerceType(f *load.Field, v any) (any, error) {
	switch t := f.Type; {
	case t.Integer():
		return coerceInt(f, v)
	case t.Float():
		return coerceFloat(f, v)
	case t == field.TypeBool:
		return coerceBool(f, v)
	case t == field.TypeString, t == field.TypeFilePath:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(f, v)
		}
		return s, nil
	case t == field.TypeEnum:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(f, v)
		}
		return s, nil
	case t == field.TypeTime:
		return coerceTime(f, v, time.RFC3339Nano)
	case t == field.TypeDate:
		return coerceTime(f, v, time.DateOnly)
	case t == field.TypeDuration:
		return coerceDuration(f, v)
	case t == field.TypeTimeOfDay:
		return coerceTimeOfDay(f, v)
	case t == field.TypeBytes:
		switch v := v.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
		return nil, typeError(f, v)
	case t == field.TypeDecimal:
		return coerceDecimal(f, v)
	case t == field.TypeIP:
		s, ok := v.(string)
		if !ok {
			if ip, ok := v.(net.IP); ok {
				return ip.String(), nil
			}
			return nil, typeError(f, v)
		}
		if net.ParseIP(s) == nil {
			return nil, fmt.Errorf("%q is not a valid ip address", s)
		}
		return s, nil
	case t == field.TypeUUID:
		return coerceUUID(f, v)
	default:
		// JSON and opaque values pass through unchanged.
		return v, nil
	}
}

func coerceInt(f *load.Field, v any) (any, error) {
	unsigned := f.Type >= field.TypeUint && f.Type <= field.TypeUint64
	var n int64
	var u uint64
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		n = rv.Int()
		if n >= 0 {
			u = uint64(n)
		} else if unsigned {
			return nil, fmt.Errorf("value %d out of range for %s", n, f.Type)
		}
	case rv.CanUint():
		u = rv.Uint()
		if u > math.MaxInt64 && !unsigned {
			return nil, fmt.Errorf("value %d out of range for %s", u, f.Type)
		}
		n = int64(u)
	case rv.CanFloat():
		fl := rv.Float()
		if fl != math.Trunc(fl) {
			return nil, fmt.Errorf("value %v is not an integer", fl)
		}
		n = int64(fl)
		if n < 0 && unsigned {
			return nil, fmt.Errorf("value %d out of range for %s", n, f.Type)
		}
		u = uint64(n)
	case rv.Kind() == reflect.String:
		parsed, err := strconv.ParseInt(rv.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", rv.String())
		}
		n = parsed
		if n < 0 && unsigned {
			return nil, fmt.Errorf("value %d out of range for %s", n, f.Type)
		}
		u = uint64(n)
	default:
		return nil, typeError(f, v)
	}
	if unsigned {
		return u, nil
	}
	return n, nil
}

func coerceFloat(f *load.Field, v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	case rv.Kind() == reflect.String:
		fl, err := strconv.ParseFloat(rv.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", rv.String())
		}
		return fl, nil
	default:
		return nil, typeError(f, v)
	}
}

func coerceBool(f *load.Field, v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid boolean", v)
		}
		return b, nil
	default:
		return nil, typeError(f, v)
	}
}

func coerceTime(f *load.Field, v any, layout string) (any, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		ts, err := time.Parse(layout, v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid %s", v, f.Type)
		}
		return ts, nil
	default:
		return nil, typeError(f, v)
	}
}

func coerceDuration(f *load.Field, v any) (any, error) {
	switch v := v.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid duration", v)
		}
		return d, nil
	default:
		rv := reflect.ValueOf(v)
		if rv.CanInt() {
			return time.Duration(rv.Int()), nil
		}
		return nil, typeError(f, v)
	}
}

func coerceTimeOfDay(f *load.Field, v any) (any, error) {
	switch v := v.(type) {
	case time.Time:
		return v.Format(time.TimeOnly), nil
	case string:
		if _, err := time.Parse(time.TimeOnly, v); err != nil {
			return nil, fmt.Errorf("%q is not a valid time of day", v)
		}
		return v, nil
	default:
		return nil, typeError(f, v)
	}
}

func coerceDecimal(f *load.Field, v any) (any, error) {
	switch v := v.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid decimal", v)
		}
		return d, nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanInt():
			return decimal.NewFromInt(rv.Int()), nil
		case rv.CanUint():
			return decimal.NewFromUint64(rv.Uint()), nil
		}
		return nil, typeError(f, v)
	}
}

func coerceUUID(f *load.Field, v any) (any, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid uuid", v)
		}
		return id, nil
	case [16]byte:
		return uuid.UUID(v), nil
	default:
		return nil, typeError(f, v)
	}
}

// checkConstraints enforces the declared bounds on an already-coerced
// value.
func checkConstraints(f *load.Field, v any) error {
	if v == nil {
		return nil
	}
	switch t := f.Type; {
	case t.Integer(), t.Float():
		n := asFloat(v)
		if f.Min != nil && n < *f.Min {
			return fmt.Errorf("value %v below minimum %v", v, *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Errorf("value %v above maximum %v", v, *f.Max)
		}
	case t == field.TypeDecimal:
		d := v.(decimal.Decimal)
		if f.Min != nil && d.LessThan(decimal.NewFromFloat(*f.Min)) {
			return fmt.Errorf("value %s below minimum %v", d, *f.Min)
		}
		if f.Max != nil && d.GreaterThan(decimal.NewFromFloat(*f.Max)) {
			return fmt.Errorf("value %s above maximum %v", d, *f.Max)
		}
		if f.MaxDigits > 0 && int(d.NumDigits()) > f.MaxDigits {
			return fmt.Errorf("value %s exceeds %d digits", d, f.MaxDigits)
		}
		if f.DecimalPlaces > 0 && int(-d.Exponent()) > f.DecimalPlaces {
			return fmt.Errorf("value %s exceeds %d decimal places", d, f.DecimalPlaces)
		}
	case t == field.TypeString, t == field.TypeFilePath, t == field.TypeIP:
		s := v.(string)
		if f.MinLen > 0 && len(s) < f.MinLen {
			return fmt.Errorf("value length %d below minimum %d", len(s), f.MinLen)
		}
		if f.MaxLen > 0 && len(s) > f.MaxLen {
			return fmt.Errorf("value length %d above maximum %d", len(s), f.MaxLen)
		}
	case t == field.TypeEnum:
		s := v.(string)
		for _, allowed := range f.Enums {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("value %q is not one of %v", s, f.Enums)
	case t == field.TypeBytes:
		b := v.([]byte)
		if f.MinLen > 0 && len(b) < f.MinLen {
			return fmt.Errorf("value length %d below minimum %d", len(b), f.MinLen)
		}
		if f.MaxLen > 0 && len(b) > f.MaxLen {
			return fmt.Errorf("value length %d above maximum %d", len(b), f.MaxLen)
		}
	}
	return nil
}

func asFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return rv.Float()
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	}
	return 0
}
