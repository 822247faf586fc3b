package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// Frequency – immutable value object
// ---------------------------------------------------------------------------

// Frequency is the repayment cadence of a loan schedule.
type Frequency struct {
	value string
}

const (
	frequencyDaily   = "DAILY"
	frequencyWeekly  = "WEEKLY"
	frequencyMonthly = "MONTHLY"
)

var (
	FrequencyDaily   = Frequency{value: frequencyDaily}
	FrequencyWeekly  = Frequency{value: frequencyWeekly}
	FrequencyMonthly = Frequency{value: frequencyMonthly}
)

var validFrequencies = map[string]Frequency{
	frequencyDaily:   FrequencyDaily,
	frequencyWeekly:  FrequencyWeekly,
	frequencyMonthly: FrequencyMonthly,
}

// NewFrequency creates a Frequency from a raw string.
func NewFrequency(s string) (Frequency, error) {
	v, ok := validFrequencies[s]
	if !ok {
		return Frequency{}, fmt.Errorf("invalid repayment frequency: %q", s)
	}
	return v, nil
}

// String returns the string representation of the frequency.
func (f Frequency) String() string { return f.value }

// IsZero returns true if the frequency has not been initialised.
func (f Frequency) IsZero() bool { return f.value == "" }

// Equal returns true when both frequencies carry the same value.
func (f Frequency) Equal(other Frequency) bool { return f.value == other.value }

// MaxTerm returns the maximum number of installments allowed for this
// cadence: 6 for monthly loans, 26 for daily and weekly ones.
func (f Frequency) MaxTerm() int {
	if f.value == frequencyMonthly {
		return 6
	}
	return 26
}
