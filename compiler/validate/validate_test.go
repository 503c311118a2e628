package validate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/compiler/validate"
	"github.com/syssam/tabula/schema/field"
)

func compile(t *testing.T, builders ...*field.Builder) *validate.Program {
	t.Helper()
	fields := make([]*load.Field, 0, len(builders))
	for _, b := range builders {
		lf, err := load.NewField(b.Descriptor())
		require.NoError(t, err)
		fields = append(fields, lf)
	}
	return validate.Compile("Hero", fields)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	p := compile(t,
		field.String("name").MinLen(1),
		field.Int("age").Min(0).Optional(),
		field.String("role").Optional().Default("user"),
	)
	assert.Equal(t, "Hero", p.Model())
	assert.Equal(t, []string{"name", "age", "role"}, p.Fields())
	assert.True(t, p.Has("age"))
	assert.False(t, p.Has("team"))

	cleaned, err := p.Validate(map[string]any{"name": "Deadpond", "age": 30})
	require.NoError(t, err)
	assert.Equal(t, "Deadpond", cleaned["name"])
	assert.Equal(t, int64(30), cleaned["age"])
	assert.Equal(t, "user", cleaned["role"])
}

func TestValidateAggregatesErrors(t *testing.T) {
	t.Parallel()
	p := compile(t,
		field.String("name"),
		field.Int("age").Min(0),
	)
	_, err := p.Validate(map[string]any{"age": -1, "bogus": true})
	require.Error(t, err)
	var verr *tabula.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	fe, ok := verr.Field("name")
	require.True(t, ok)
	assert.EqualError(t, fe.Err, "field required")
	fe, ok = verr.Field("age")
	require.True(t, ok)
	assert.EqualError(t, fe.Err, "value -1 below minimum 0")
	fe, ok = verr.Field("bogus")
	require.True(t, ok)
	assert.EqualError(t, fe.Err, "unknown field")
}

func TestValidateDefaults(t *testing.T) {
	t.Parallel()
	calls := 0
	fn := func() any { calls++; return calls }
	p := compile(t,
		field.Int("counter").DefaultFunc(fn),
		field.String("status").Default("active"),
	)
	cleaned, err := p.Validate(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cleaned["counter"])
	assert.Equal(t, "active", cleaned["status"])

	// The factory runs once per validation pass.
	cleaned, err = p.Validate(map[string]any{"status": "off"})
	require.NoError(t, err)
	assert.Equal(t, 2, cleaned["counter"])
	assert.Equal(t, "off", cleaned["status"])
}

func TestValidateInjectedSentinel(t *testing.T) {
	t.Parallel()
	lf, err := load.NewField(field.String("name").Descriptor())
	require.NoError(t, err)
	lf.Injected = true
	p := validate.Compile("Hero", []*load.Field{lf})

	// Zero-argument validation succeeds with the nil sentinel.
	cleaned, err := p.Validate(nil)
	require.NoError(t, err)
	v, ok := cleaned["name"]
	assert.True(t, ok)
	assert.Nil(t, v)

	// And the sentinel keeps nil assignable.
	cv, err := p.ValidateField("name", nil)
	require.NoError(t, err)
	assert.Nil(t, cv)
}

func TestValidateField(t *testing.T) {
	t.Parallel()
	p := compile(t, field.Int("age").Range(0, 150))

	v, err := p.ValidateField("age", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = p.ValidateField("age", 151)
	require.Error(t, err)
	assert.True(t, tabula.IsValidation(err))

	_, err = p.ValidateField("missing", 1)
	require.Error(t, err)
	assert.True(t, tabula.IsValidation(err))
}

func TestNilHandling(t *testing.T) {
	t.Parallel()
	p := compile(t,
		field.String("nickname").Nillable(),
		field.String("name"),
	)
	v, err := p.ValidateField("nickname", nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = p.ValidateField("name", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none is not an allowed value")
}

func TestCoercions(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	tests := []struct {
		name    string
		builder *field.Builder
		in      any
		want    any
	}{
		{"int_from_float", field.Int("v"), 7.0, int64(7)},
		{"int_from_string", field.Int("v"), "7", int64(7)},
		{"uint_from_int", field.Uint("v"), 7, uint64(7)},
		{"float_from_int", field.Float("v"), 2, 2.0},
		{"float_from_string", field.Float("v"), "2.5", 2.5},
		{"bool_from_string", field.Bool("v"), "true", true},
		{"time_from_string", field.Time("v"), "2026-08-23T10:00:00Z", ts},
		{"date_from_string", field.Date("v"), "2026-08-23", time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)},
		{"duration_from_string", field.Duration("v"), "1h30m", 90 * time.Minute},
		{"duration_from_int", field.Duration("v"), int64(time.Second), time.Second},
		{"timeofday_from_time", field.TimeOfDay("v"), ts, "10:00:00"},
		{"timeofday_from_string", field.TimeOfDay("v"), "23:59:59", "23:59:59"},
		{"bytes_from_string", field.Bytes("v"), "abc", []byte("abc")},
		{"decimal_from_string", field.Decimal("v"), "12.34", decimal.RequireFromString("12.34")},
		{"ip_valid", field.IP("v"), "127.0.0.1", "127.0.0.1"},
		{"uuid_from_string", field.UUID("v"), id.String(), id},
		{"json_passthrough", field.JSON("v"), map[string]any{"k": 1}, map[string]any{"k": 1}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := compile(t, tt.builder)
			v, err := p.ValidateField("v", tt.in)
			require.NoError(t, err)
			if d, ok := tt.want.(decimal.Decimal); ok {
				assert.True(t, d.Equal(v.(decimal.Decimal)))
				return
			}
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCoercionFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		builder *field.Builder
		in      any
	}{
		{"int_from_fraction", field.Int("v"), 7.5},
		{"int_from_garbage", field.Int("v"), "seven"},
		{"uint_from_negative", field.Uint("v"), -1},
		{"bool_from_int", field.Bool("v"), 1},
		{"string_from_int", field.String("v"), 1},
		{"time_from_garbage", field.Time("v"), "yesterday"},
		{"duration_from_garbage", field.Duration("v"), "soon"},
		{"timeofday_out_of_range", field.TimeOfDay("v"), "25:00:00"},
		{"decimal_from_garbage", field.Decimal("v"), "12.3.4"},
		{"ip_invalid", field.IP("v"), "999.0.0.1"},
		{"uuid_invalid", field.UUID("v"), "not-a-uuid"},
		{"enum_not_allowed", field.Enum("v").Values("on", "off"), "maybe"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := compile(t, tt.builder)
			_, err := p.ValidateField("v", tt.in)
			require.Error(t, err)
			assert.True(t, tabula.IsValidation(err))
		})
	}
}

func TestDecimalConstraints(t *testing.T) {
	t.Parallel()
	p := compile(t, field.Decimal("price").MaxDigits(5).DecimalPlaces(2))

	v, err := p.ValidateField("price", "123.45")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("123.45").Equal(v.(decimal.Decimal)))

	_, err = p.ValidateField("price", "123456.78")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 5 digits")

	_, err = p.ValidateField("price", "1.234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 2 decimal places")
}

func TestStringConstraints(t *testing.T) {
	t.Parallel()
	p := compile(t, field.String("name").MinLen(2).MaxLen(5))

	_, err := p.ValidateField("name", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum 2")

	_, err = p.ValidateField("name", "toolong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "above maximum 5")

	v, err := p.ValidateField("name", "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
