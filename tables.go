package fluke45

import "slices"

// Prompt tokens the meter emits once it is ready for the next command
const (
	promptReady     = "=>"
	promptCmdError  = "?>"
	promptExecError = "!>"
)

// etx interrupts the meter and makes it emit a fresh prompt
const etx = 0x03

const (
	preambleCommand = "*RST; RATE F; FORMAT 1; AUTO"
	readingCommand  = "MEAS1?"
	stateCommand    = "*IDN?; FUNC1?; AUTO?; MOD?; VAL1?; RANGE1?"
)

// Fields of the stateCommand reply, in order
const (
	fieldIdentity = iota
	fieldFunction
	fieldAuto
	fieldModifiers
	fieldValue
	fieldRange
	stateFieldCount
)

const (
	modeAuto = "auto"
	// overrange is the multiplier reported for exponents the meter cannot display
	overrange = "!OR"
)

// Function describes one measurement function the meter can be set to.
type Function struct {
	Code  string
	Name  string
	Units string
	Modes []string // implied by the function itself
}

var functions = map[string]Function{
	"VDC":  {Code: "VDC", Name: "Voltage", Units: "V", Modes: []string{"dc"}},
	"VAC":  {Code: "VAC", Name: "Voltage", Units: "V", Modes: []string{"ac"}},
	"ADC":  {Code: "ADC", Name: "Current", Units: "A", Modes: []string{"dc"}},
	"AAC":  {Code: "AAC", Name: "Current", Units: "A", Modes: []string{"ac"}},
	"OHMS": {Code: "OHMS", Name: "Resistance", Units: "Ω", Modes: []string{}},
	"FREQ": {Code: "FREQ", Name: "Frequency", Units: "Hz", Modes: []string{}},
}

// LookupFunction returns the descriptor for a function code as sent by FUNC1?.
func LookupFunction(code string) (Function, bool) {
	f, ok := functions[code]
	if !ok {
		return Function{}, false
	}
	f.Modes = slices.Clone(f.Modes)
	return f, true
}

// modifier maps one MOD? bit to its mode tag. Kept in descending bit order.
var modifiers = []struct {
	bit int
	tag string
}{
	{64, "comp"},
	{32, "rel"},
	{16, "dbw"},
	{8, "db"},
	{4, "hold"},
	{2, "max"},
	{1, "min"},
}

var multipliers = map[int]string{
	-3: "m",
	0:  "",
	3:  "k",
	6:  "M",
	9:  overrange,
}

// modifierModes returns the tags for every bit set in mask, highest bit first.
func modifierModes(mask int) []string {
	var modes []string
	for _, m := range modifiers {
		if mask&m.bit != 0 {
			modes = append(modes, m.tag)
		}
	}
	return modes
}
