package post

import "strings"

// ValidationError reports input the service refuses to act on. MissingFields
// is only set when required fields of a Draft are absent.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.MissingFields, ", ")
}
