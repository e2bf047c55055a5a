package task

// Importance ranks a task. The string value is the canonical label used by
// every on-disk and wire format.
type Importance string

const (
	ImportanceLow    Importance = "неважная"
	ImportanceNormal Importance = "обычная"
	ImportanceHigh   Importance = "важная"
)

// Importances lists all importance values, lowest first.
var Importances = []Importance{ImportanceLow, ImportanceNormal, ImportanceHigh}

// ParseImportance maps a label to an Importance. Unknown or empty labels
// resolve to ImportanceNormal and ok is false.
func ParseImportance(label string) (imp Importance, ok bool) {
	switch Importance(label) {
	case ImportanceLow, ImportanceNormal, ImportanceHigh:
		return Importance(label), true
	}

	// English aliases accepted from the command line.
	switch label {
	case "low":
		return ImportanceLow, true
	case "normal", "basic":
		return ImportanceNormal, true
	case "high", "important":
		return ImportanceHigh, true
	}

	return ImportanceNormal, false
}

// Valid reports whether imp is one of the known values. The zero value is
// treated as normal.
func (imp Importance) Valid() bool {
	switch imp {
	case "", ImportanceLow, ImportanceNormal, ImportanceHigh:
		return true
	}
	return false
}

// OrDefault returns imp, or ImportanceNormal for the zero value.
func (imp Importance) OrDefault() Importance {
	if imp == "" {
		return ImportanceNormal
	}
	return imp
}

// IsNormal reports whether imp is the default importance.
func (imp Importance) IsNormal() bool {
	return imp.OrDefault() == ImportanceNormal
}

// Short returns the English name used in logs and CLI output.
func (imp Importance) Short() string {
	switch imp.OrDefault() {
	case ImportanceLow:
		return "low"
	case ImportanceHigh:
		return "high"
	default:
		return "normal"
	}
}
