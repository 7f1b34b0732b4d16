// Package logging contains the structured logger used by socketstat
// tooling. The library packages never log; they return errors.
package logging

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
)

// Logger is a logger that logs messages on the standard error
// in a structured JSON format, to simplify processing.
var Logger = log.Logger{
	Handler: json.New(os.Stderr),
	Level:   log.InfoLevel,
}
