package models

// Report is the outcome of a single upload. The JSON shape is relied upon
// by external callers and must not change.
type Report struct {
	Success        bool          `json:"success"`
	UnitsProcessed int           `json:"unitsProcessed"`
	UnitsFailed    int           `json:"unitsFailed"`
	Summary        string        `json:"summary"`
	Details        ReportDetails `json:"details"`
}

// ReportDetails carries the error messages of a failed upload
type ReportDetails struct {
	Errors []string `json:"errors,omitempty"`
}

// SuccessReport returns the report for one unit imported without error
func SuccessReport() Report {
	return Report{
		Success:        true,
		UnitsProcessed: 1,
	}
}

// FailureReport returns a report carrying a single error message
func FailureReport(message string) Report {
	return Report{
		Success:     false,
		UnitsFailed: 1,
		Details: ReportDetails{
			Errors: []string{message},
		},
	}
}
