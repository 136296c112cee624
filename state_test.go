package fluke45

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModifierModesAllMasks(t *testing.T) {
	for mask := 0; mask < 128; mask++ {
		modes := modifierModes(mask)

		pos := 0
		for _, m := range modifiers {
			set := mask&m.bit != 0
			has := pos < len(modes) && modes[pos] == m.tag
			if set != has {
				t.Fatalf("mask %d: tag %q present=%v, bit set=%v (modes %v)", mask, m.tag, has, set, modes)
			}
			if has {
				pos++
			}
		}
		if pos != len(modes) {
			t.Fatalf("mask %d: unexpected extra modes %v", mask, modes[pos:])
		}
	}
}

func TestModifierModes(t *testing.T) {
	assert.Nil(t, modifierModes(0))
	assert.Equal(t, []string{"comp", "hold"}, modifierModes(68))
	assert.Equal(t, []string{"comp", "rel", "dbw", "db", "hold", "max", "min"}, modifierModes(127))
}

func TestLookupFunction(t *testing.T) {
	fn, ok := LookupFunction("VAC")
	require.True(t, ok)
	assert.Equal(t, "Voltage", fn.Name)
	assert.Equal(t, []string{"ac"}, fn.Modes)

	fn.Modes[0] = "changed"
	again, _ := LookupFunction("VAC")
	assert.Equal(t, []string{"ac"}, again.Modes, "descriptor table must not be mutable through lookups")

	_, ok = LookupFunction("DIODE")
	assert.False(t, ok)
	assert.Len(t, functions, 6)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		text       string
		value      float64
		mantissa   string
		multiplier string
	}{
		{"1.2345E+00", 1.2345, "1.2345", ""},
		{"+1.2345E+3", 1234.5, "1.2345", "k"},
		{"4.7E+6", 4.7e6, "4.7", "M"},
		{"2.5E-3", 2.5e-3, "2.5", "m"},
		{"1.0E+9", 1e9, "1.0", "!OR"},
		{"1E+12", 1e12, "1", "!OR"},
		{"0.75", 0.75, "0.75", ""},
		{"-3.2e0", -3.2, "-3.2", ""},
		{"1.5E+4", 1.5e4, "15", "k"},
		{"1.5E-1", 0.15, "150", "m"},
		{"2E-6", 2e-6, "0.002", "m"},
		{" 1.0E+0 ", 1, "1.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r, err := parseValue(tt.text)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.value, r.value, 1e-9)
			assert.Equal(t, tt.mantissa, r.mantissa)
			assert.Equal(t, tt.multiplier, r.multiplier)
		})
	}
}

func TestParseValueInvalid(t *testing.T) {
	for _, text := range []string{"", "abc", "1.0Exy", "E+3", "NaN", "Inf", "1.0E"} {
		t.Run(text, func(t *testing.T) {
			_, err := parseValue(text)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestDeviceIdentity(t *testing.T) {
	assert.Equal(t, "ttyUSB0", deviceIdentity("/dev/ttyUSB0"))
	assert.Equal(t, "cu.usbserial-1420", deviceIdentity("/dev/cu.usbserial-1420"))
	assert.Equal(t, "COM3", deviceIdentity("COM3"))
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "1.2345 V [auto, dc]", formatDisplay("1.2345", "", "V", []string{"auto", "dc"}))
	assert.Equal(t, "10.5 kΩ []", formatDisplay("10.5", "k", "Ω", nil))
}

func TestParseState(t *testing.T) {
	st, err := parseState("/dev/ttyUSB0", "FLUKE 45; VAC ;0;36;2.2E-1;3")
	require.NoError(t, err)

	assert.Equal(t, "Voltage", st.Function)
	assert.Equal(t, []string{"ac", "rel", "hold"}, st.Modes)
	assert.Equal(t, "220", st.Mantissa)
	assert.Equal(t, "m", st.Multiplier)
	assert.Equal(t, 3, st.Range)
	assert.Equal(t, "220 mV [ac, rel, hold]", st.Display)
}

func TestParseStateErrors(t *testing.T) {
	tests := []struct {
		reply string
		want  error
	}{
		{"FLUKE 45;VDC;1;0;1.0E+0", ErrMalformedReply},
		{"FLUKE 45;VDC;1;0;1.0E+0;0;extra", ErrMalformedReply},
		{"FLUKE 45;VDC;x;0;1.0E+0;0", ErrMalformedReply},
		{"FLUKE 45;VDC;1;x;1.0E+0;0", ErrMalformedReply},
		{"FLUKE 45;VDC;1;0;1.0E+0;x", ErrMalformedReply},
		{"FLUKE 45;VDC;1;0;bad;0", ErrInvalidValue},
		{"FLUKE 45;DIODE;1;0;1.0E+0;0", ErrUnknownFunction},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			st, err := parseState("/dev/ttyUSB0", tt.reply)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, Snapshot{}, st)
		})
	}
}

func TestSnapshotHasModes(t *testing.T) {
	st := Snapshot{Modes: []string{"auto", "dc", "hold"}}

	assert.True(t, st.HasModes([]string{"hold", "DC", "auto"}))
	assert.False(t, st.HasModes([]string{"auto", "dc"}))
	assert.False(t, st.HasModes([]string{"auto", "dc", "hold", "min"}))
	assert.True(t, Snapshot{}.HasModes(nil))
}

func TestSnapshotOverrange(t *testing.T) {
	assert.True(t, Snapshot{Multiplier: "!OR"}.Overrange())
	assert.False(t, Snapshot{Multiplier: "k"}.Overrange())
}
