package observability

import (
	"errors"
	"fmt"

	"github.com/coachpo/meltica-rest/errs"
)

// AggregateErrors joins the non-nil failures of a multi-venue operation and
// logs them once with their error classes. It returns nil when nothing failed.
func AggregateErrors(operation string, failures []error, fields ...Field) error {
	kept := make([]error, 0, len(failures))
	classes := make([]string, 0, len(failures))
	for _, err := range failures {
		if err == nil {
			continue
		}
		kept = append(kept, err)
		class := errs.ClassOf(err)
		if class == "" {
			class = "unclassified"
		}
		classes = append(classes, string(class))
	}
	if len(kept) == 0 {
		return nil
	}
	joined := errors.Join(kept...)
	logFields := make([]Field, 0, len(fields)+3)
	logFields = append(logFields, fields...)
	logFields = append(logFields,
		Field{Key: "operation", Value: operation},
		Field{Key: "failures", Value: len(kept)},
		Field{Key: "classes", Value: classes},
	)
	Log().Error(operation+" failed", logFields...)
	return fmt.Errorf("%s failed: %w", operation, joined)
}
