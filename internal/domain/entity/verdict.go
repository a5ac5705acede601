package entity

type VerdictStatus string

const (
	StatusPass    VerdictStatus = "PASS"
	StatusFail    VerdictStatus = "FAIL"
	StatusPartial VerdictStatus = "PARTIAL"
)

// Check is one expected-vs-observed comparison. Passed is nil when the check
// was inconclusive or had no expectation; absence of an expectation is never
// reported as a failure.
type Check struct {
	Name     string `json:"name"`
	Passed   *bool  `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Verdict is produced once per request and never mutated after construction.
type Verdict struct {
	Status  VerdictStatus `json:"status"`
	Checks  []Check       `json:"checks"`
	Message string        `json:"message"`
}

func boolPtr(b bool) *bool { return &b }

// NewCheck builds a conclusive check.
func NewCheck(name string, passed bool, expected, actual string) Check {
	return Check{Name: name, Passed: boolPtr(passed), Expected: expected, Actual: actual}
}

// NewNullCheck builds an inconclusive check (passed = null on the wire).
func NewNullCheck(name, expected, actual string) Check {
	return Check{Name: name, Expected: expected, Actual: actual}
}

// DeriveStatus applies the three-way status rule: PASS iff no check failed
// and at least one passed; FAIL iff any check failed; PARTIAL otherwise.
func DeriveStatus(checks []Check) VerdictStatus {
	anyTrue := false
	for _, c := range checks {
		if c.Passed == nil {
			continue
		}
		if !*c.Passed {
			return StatusFail
		}
		anyTrue = true
	}
	if anyTrue {
		return StatusPass
	}
	return StatusPartial
}
