package survey

import "fmt"

// ParseError reports a fatal problem with a single survey's header. It is
// fatal for that survey only; other surveys in the same file proceed.
type ParseError struct {
	File   string
	Survey string
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("survey.header: %s: %s: %s", e.File, e.Survey, e.Msg)
}

func newHeaderErr(file, surveyName, format string, args ...interface{}) *ParseError {
	return &ParseError{File: file, Survey: surveyName, Msg: fmt.Sprintf(format, args...)}
}
