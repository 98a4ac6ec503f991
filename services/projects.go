package services

import "strings"

// NonProjectCode is the project code used when an entry is not tied to a
// business line, and the fallback for unrecognized codes.
const NonProjectCode = "---"

// ProjectOption is a project code with its descriptive label.
type ProjectOption struct {
	Code  string
	Label string
}

// ProjectOptions is the closed project-code vocabulary, in display order.
var ProjectOptions = []ProjectOption{
	{NonProjectCode, "(NON-PROJECT)"},
	{"BD", "Business Development"},
	{"CME", "Civil Mechanical Electrical"},
	{"CS", "Customer Support"},
	{"HQ", "Head Quarter"},
	{"IBS", "Inbuilding System"},
	{"MISC", "Miscellaneous Project"},
	{"MS", "Managing Services"},
	{"RNO", "Radio Network Optimization"},
	{"SOLAR", "Solar"},
	{"TI", "Technical Installation"},
	{"TINSOL", "Tinno Solar"},
}

// Workflow statuses offered by the entry form.
const (
	StatusWaiting  = "Waiting"
	StatusProcess  = "Process"
	StatusRejected = "Rejected"
	StatusClaimed  = "Claimed"
)

// StatusOptions lists the workflow statuses in display order.
var StatusOptions = []string{StatusWaiting, StatusProcess, StatusRejected, StatusClaimed}

// ProjectCodes returns the project codes in display order.
func ProjectCodes() []string {
	codes := make([]string, len(ProjectOptions))
	for i, p := range ProjectOptions {
		codes[i] = p.Code
	}
	return codes
}

// NormalizeProject returns the canonical project code for s, matching
// case-insensitively. Blank or unknown values become NonProjectCode.
func NormalizeProject(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range ProjectOptions {
		if strings.EqualFold(p.Code, s) {
			return p.Code
		}
	}
	return NonProjectCode
}

// ProjectLabel returns the descriptive label for a code, or "" if unknown.
func ProjectLabel(code string) string {
	for _, p := range ProjectOptions {
		if p.Code == code {
			return p.Label
		}
	}
	return ""
}

// NormalizeStatus maps s onto one of StatusOptions (case-insensitive).
// Anything else falls back to StatusWaiting, the form default.
func NormalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	for _, opt := range StatusOptions {
		if strings.EqualFold(opt, s) {
			return opt
		}
	}
	return StatusWaiting
}
