package kernel

import "strings"

type JobTitle string

type Location string

type CompanyName string

type CandidateName string

type Email string

func (e Email) String() string { return string(e) }

// IsPlausible is a cheap shape check, not RFC 5322 validation
func (e Email) IsPlausible() bool {
	s := string(e)
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}

// Currency is an ISO 4217 code
type Currency string

// DefaultCurrency applies when a listing does not state one
const DefaultCurrency Currency = "INR"

// EmploymentType is stored as a lower-case slug, e.g. "full-time"
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentTemporary  EmploymentType = "temporary"
)

// NormalizeEmploymentType folds case and separators so "Full Time",
// "full_time" and "FULL-TIME" are the same value
func NormalizeEmploymentType(s string) EmploymentType {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return EmploymentType(strings.Trim(s, "-"))
}
