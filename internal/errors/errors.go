package errors

import "fmt"

// ErrInvalidScope is returned when a date/month/year selector cannot be parsed.
type ErrInvalidScope struct {
	Selector string
	Value    string
}

func (e *ErrInvalidScope) Error() string {
	return fmt.Sprintf("invalid %s selector: %q", e.Selector, e.Value)
}

// ErrNoMatchData is returned by the cross-indexer when the input tree yields
// no usable match records. Summaries tolerate an empty input set; the
// cross-indexer treats it as an upstream configuration problem.
type ErrNoMatchData struct {
	Dir string
}

func (e *ErrNoMatchData) Error() string {
	return fmt.Sprintf("no match records found under %q", e.Dir)
}
