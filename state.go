package fluke45

import (
	"fmt"
	"math"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Snapshot is the session's interpretation of the meter's state. A session
// only ever publishes a Snapshot with every field set.
type Snapshot struct {
	Device     string   `yaml:"device" json:"device"`
	Info       string   `yaml:"info" json:"info"`
	Function   string   `yaml:"function" json:"function"`
	Units      string   `yaml:"units" json:"units"`
	Value      float64  `yaml:"value" json:"value"`
	Mantissa   string   `yaml:"mantissa" json:"mantissa"`
	Multiplier string   `yaml:"multiplier" json:"multiplier"`
	Modes      []string `yaml:"modes" json:"modes"`
	Range      int      `yaml:"range" json:"range"`
	Display    string   `yaml:"display" json:"display"`
}

// Overrange reports whether the last value was beyond the selected range.
func (s Snapshot) Overrange() bool {
	return s.Multiplier == overrange
}

func (s Snapshot) clone() Snapshot {
	s.Modes = slices.Clone(s.Modes)
	return s
}

// HasModes reports whether modes and the snapshot's modes are the same set.
// Comparison ignores case.
func (s Snapshot) HasModes(modes []string) bool {
	want := modeSet(modes)
	have := modeSet(s.Modes)
	if len(want) != len(have) {
		return false
	}
	for m := range want {
		if _, ok := have[m]; !ok {
			return false
		}
	}
	return true
}

func modeSet(modes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(modes))
	for _, m := range modes {
		set[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return set
}

// reading is one parsed value field.
type reading struct {
	value      float64
	mantissa   string
	multiplier string
}

// parseValue parses a value field of the form <mantissa>[E<exponent>]. A
// missing exponent counts as zero. Exponents without an SI prefix are moved
// to the next lower one that has a prefix; 9 and above are overrange.
func parseValue(text string) (reading, error) {
	text = strings.TrimSpace(text)
	mantText, expText, hasExp := strings.Cut(strings.ToUpper(text), "E")

	mant, err := strconv.ParseFloat(mantText, 64)
	if err != nil || math.IsNaN(mant) || math.IsInf(mant, 0) {
		return reading{}, invalidValue(text, err)
	}

	exp := 0
	if hasExp {
		if exp, err = strconv.Atoi(expText); err != nil {
			return reading{}, invalidValue(text, err)
		}
	}

	r := reading{
		value:    scaled(mantText, exp),
		mantissa: strings.TrimPrefix(mantText, "+"),
	}

	if prefix, ok := multipliers[exp]; ok {
		r.multiplier = prefix
		return r, nil
	}

	target := exp - ((exp%3)+3)%3
	switch {
	case exp > 9:
		r.multiplier = overrange
		return r, nil
	case target < -3:
		target = -3
	}
	r.multiplier = multipliers[target]
	r.mantissa = strconv.FormatFloat(scaled(mantText, exp-target), 'f', -1, 64)
	return r, nil
}

// scaled returns mantissa * 10^exp, rounded once.
func scaled(mantissa string, exp int) float64 {
	v, _ := strconv.ParseFloat(mantissa+"e"+strconv.Itoa(exp), 64)
	return v
}

func invalidValue(text string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %q", ErrInvalidValue, text)
	}
	return fmt.Errorf("%w: %q: %w", ErrInvalidValue, text, err)
}

// formatDisplay renders "<mantissa> <prefix><unit> [mode, ...]".
func formatDisplay(mantissa, multiplier, units string, modes []string) string {
	return fmt.Sprintf("%s %s%s [%s]", mantissa, multiplier, units, strings.Join(modes, ", "))
}

// deviceIdentity names a meter after its port: the last path element for
// path-style names, the identifier itself otherwise (e.g. COM3).
func deviceIdentity(device string) string {
	if strings.Contains(device, "/") {
		return path.Base(device)
	}
	return device
}

// parseState turns the reply to stateCommand into a complete Snapshot.
func parseState(device, reply string) (Snapshot, error) {
	fields := strings.Split(reply, ";")
	if len(fields) != stateFieldCount {
		return Snapshot{}, fmt.Errorf("%w: expected %d fields, got %d in %q",
			ErrMalformedReply, stateFieldCount, len(fields), reply)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	code := strings.ToUpper(fields[fieldFunction])
	fn, ok := LookupFunction(code)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownFunction, fields[fieldFunction])
	}

	auto, err := strconv.Atoi(fields[fieldAuto])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: autorange flag %q", ErrMalformedReply, fields[fieldAuto])
	}
	mask, err := strconv.Atoi(fields[fieldModifiers])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: modifier mask %q", ErrMalformedReply, fields[fieldModifiers])
	}
	rng, err := strconv.Atoi(fields[fieldRange])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: range %q", ErrMalformedReply, fields[fieldRange])
	}
	r, err := parseValue(fields[fieldValue])
	if err != nil {
		return Snapshot{}, err
	}

	modes := make([]string, 0, 1+len(fn.Modes)+len(modifiers))
	if auto != 0 {
		modes = append(modes, modeAuto)
	}
	modes = append(modes, fn.Modes...)
	modes = append(modes, modifierModes(mask)...)

	return Snapshot{
		Device:     deviceIdentity(device),
		Info:       fields[fieldIdentity],
		Function:   fn.Name,
		Units:      fn.Units,
		Value:      r.value,
		Mantissa:   r.mantissa,
		Multiplier: r.multiplier,
		Modes:      modes,
		Range:      rng,
		Display:    formatDisplay(r.mantissa, r.multiplier, fn.Units, modes),
	}, nil
}
