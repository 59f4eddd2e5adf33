// comply/pkg/logging/errors.go

package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

type ErrorType string

const (
	ErrorTypeParse  ErrorType = "PARSE"
	ErrorTypeEval   ErrorType = "EVAL"
	ErrorTypeReport ErrorType = "REPORT"
	ErrorTypeStore  ErrorType = "STORE"
)

type ComplyError struct {
	Type    ErrorType
	Message string
	Err     error
	Fields  map[string]interface{}
}

func (e *ComplyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ComplyError) Unwrap() error {
	return e.Err
}

func NewError(errType ErrorType, message string, err error, fields map[string]interface{}) *ComplyError {
	return &ComplyError{
		Type:    errType,
		Message: message,
		Err:     err,
		Fields:  fields,
	}
}

func LogError(logger zerolog.Logger, err error) {
	complyErr, ok := err.(*ComplyError)
	if !ok {
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	event := logger.Error().Err(complyErr.Err).
		Str("error_type", string(complyErr.Type)).
		Str("message", complyErr.Message)

	for k, v := range complyErr.Fields {
		event = event.Interface(k, v)
	}

	event.Msg(complyErr.Message)
}
