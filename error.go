package abtest

import (
	"os"

	"github.com/stvp/rollbar"
)

// SuppressErrorReporting is a global flag to prevent the client
// from sending unhandled errors to Rollbar.  Data is anonymous and
// consists only of a stack trace to identify the source of the problem.
var SuppressErrorReporting bool

// ErrorReporter sends unexpected errors, such as failures writing charts,
// to an external crash reporting service
type ErrorReporter interface {
	ReportError(err error)
}

// NewErrorReporter returns the Rollbar backed reporter.  Reporting is disabled
// when no token is set in ABTEST_ROLLBAR_TOKEN.
func NewErrorReporter() ErrorReporter {
	return errorService{}
}

type errorService struct{}

func init() {
	switch env := os.Getenv("environment"); env {
	case "development":
		rollbar.Environment = "development"
	default:
		rollbar.Environment = "production"
	}
	rollbar.Token = os.Getenv("ABTEST_ROLLBAR_TOKEN")
}

// ReportError will send the result of an unexpected error to Rollbar.
func (e errorService) ReportError(err error) {
	if SuppressErrorReporting || rollbar.Token == "" || err == nil {
		return
	}
	rollbar.Error(rollbar.ERR, err)
}

// Wait blocks until queued error reports have been sent
func (e errorService) Wait() {
	rollbar.Wait()
}
