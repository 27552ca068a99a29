package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/revoverflow/walker/pkg/types"
)

// Diagnostics logs skipped descriptor entries and pattern length mismatches
// as warnings.
type Diagnostics struct {
	logger logrus.FieldLogger
}

// NewDiagnostics adapts logger to types.Diagnostics.
func NewDiagnostics(logger logrus.FieldLogger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

func (d *Diagnostics) ConfigIssue(err *types.ConfigError) {
	fields := logrus.Fields{"structure": err.Structure}
	if err.Field >= 0 {
		fields["field"] = err.Field
	}
	if err.Criterion >= 0 {
		fields["criterion"] = err.Criterion
	}
	if err.Err != nil {
		fields["error"] = err.Err.Error()
	}
	d.logger.WithFields(fields).Warn(err.Reason)
}

func (d *Diagnostics) PatternMismatch(err *types.PatternLengthMismatchError) {
	d.logger.WithFields(logrus.Fields{
		"structure": err.Structure,
		"field":     err.Field,
		"criterion": err.Criterion,
		"offset":    err.Offset,
		"pattern":   err.Pattern,
		"tokens":    err.Tokens,
		"span":      err.Span,
	}).Warn("pattern length does not match field size")
}
