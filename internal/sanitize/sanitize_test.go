package sanitize_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigrep/internal/sanitize"
)

func TestIntOrNull(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want *int64
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"garbage", "not-a-number", nil},
		{"padded string", "  42  ", ptr(int64(42))},
		{"fractional string", "42.9", ptr(int64(42))},
		{"float", 7.7, ptr(int64(7))},
		{"negative", "-3", ptr(int64(-3))},
		{"int", 15, ptr(int64(15))},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := sanitize.IntOrNull(c.in)
			if c.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *c.want, *got)
		})
	}
}

func TestNumberOrNull(t *testing.T) {
	assert.Nil(t, sanitize.NumberOrNull(nil))
	assert.Nil(t, sanitize.NumberOrNull(""))
	assert.Nil(t, sanitize.NumberOrNull("x"))
	assert.Nil(t, sanitize.NumberOrNull(math.NaN()))

	got := sanitize.NumberOrNull("3.7")
	require.NotNil(t, got)
	assert.Equal(t, 3.7, *got)

	got = sanitize.NumberOrNull(12)
	require.NotNil(t, got)
	assert.Equal(t, 12.0, *got)
}

func TestBoolOrFalse(t *testing.T) {
	truthy := []any{true, "true", 1, "1", 1.0}
	for _, v := range truthy {
		assert.True(t, sanitize.BoolOrFalse(v), "%v", v)
	}
	falsy := []any{nil, false, "false", "TRUE", "yes", "on", 0, 2, "", "0"}
	for _, v := range falsy {
		assert.False(t, sanitize.BoolOrFalse(v), "%v", v)
	}
}

func TestDateOrNull(t *testing.T) {
	assert.Nil(t, sanitize.DateOrNull(nil))
	assert.Nil(t, sanitize.DateOrNull(""))
	assert.Nil(t, sanitize.DateOrNull("not a date"))

	got := sanitize.DateOrNull("2024-01-15")
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-15T00:00:00Z", *got)

	got = sanitize.DateOrNull("2024-01-15T10:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-15T10:30:00Z", *got)

	// unix milliseconds, the form client convention
	got = sanitize.DateOrNull(float64(1705276800000))
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-15T00:00:00Z", *got)
}

func TestEmptyToNull(t *testing.T) {
	assert.Nil(t, sanitize.EmptyToNull(nil))
	assert.Nil(t, sanitize.EmptyToNull(""))
	assert.Equal(t, "  ", sanitize.EmptyToNull("  "))
	assert.Equal(t, "x", sanitize.EmptyToNull("x"))
	assert.Equal(t, 0, sanitize.EmptyToNull(0))
}

func TestGeneralDataSchema(t *testing.T) {
	in := map[string]any{
		"cliente_id":       "42",
		"horas_maquina":    "3.7",
		"fecha_inicio":     "2024-01-15",
		"reunion_apertura": "true",
		"planta":           "",
		"maquina_serie":    "SN-100",
		"unknown_field":    "dropped",
	}
	out := sanitize.GeneralData(in)

	assert.Equal(t, int64(42), out["cliente_id"])
	assert.Nil(t, out["cotizacion_id"])
	assert.Equal(t, 3.7, out["horas_maquina"])
	assert.Equal(t, "2024-01-15T00:00:00Z", out["fecha_inicio"])
	assert.Equal(t, true, out["reunion_apertura"])
	assert.Equal(t, false, out["reunion_cierre"])
	assert.Nil(t, out["planta"])
	assert.Equal(t, "SN-100", out["maquina_serie"])
	assert.NotContains(t, out, "unknown_field")
}

func TestGeneralDataIdempotent(t *testing.T) {
	in := map[string]any{
		"cliente_id":       "42",
		"cotizacion_id":    7,
		"horas_maquina":    "3.7",
		"fecha_inicio":     "2024-01-15",
		"reunion_apertura": 1,
		"envase_desechado": "1",
		"planta":           "Linea 2",
		"eficiencias":      "",
	}
	once := sanitize.GeneralData(in)
	twice := sanitize.GeneralData(once)
	assert.Equal(t, once, twice)
}

func ptr[T any](v T) *T { return &v }
