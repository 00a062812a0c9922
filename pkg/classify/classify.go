// Package classify maps numeric analyzer scores to ordinal suspicion levels.
package classify

// Level is an ordinal suspicion level.
type Level int

const (
	Low Level = iota
	Moderate
	High
	VeryHigh
	// NotEvaluable is used when an analyzer cannot score the image at all,
	// e.g. too few keypoints for clone detection. It is terminal, not an error.
	NotEvaluable
)

// String returns the human-readable label for the level.
func (l Level) String() string {
	switch l {
	case Low:
		return "Low"
	case Moderate:
		return "Moderate"
	case High:
		return "High"
	case VeryHigh:
		return "Very High"
	case NotEvaluable:
		return "Not Evaluable"
	}
	return "Unknown"
}

// Band couples an exclusive upper bound with the interpretation reported for
// scores falling below it.
type Band struct {
	Upper          float64
	Interpretation string
}

// Bands is an ordered threshold table. The first three entries carry
// exclusive upper bounds for Low, Moderate and High; the fourth entry is the
// catch-all Very High band and its Upper value is ignored. Score scales
// differ per analyzer, so every analyzer defines its own table.
type Bands [4]Band

// Classify maps a score to a suspicion level and interpretation. Upper
// bounds are exclusive: a score exactly equal to a band's upper bound falls
// into the next band up.
func (b Bands) Classify(score float64) (Level, string) {
	for i := 0; i < 3; i++ {
		if score < b[i].Upper {
			return Level(i), b[i].Interpretation
		}
	}
	return VeryHigh, b[3].Interpretation
}
