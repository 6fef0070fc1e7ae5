package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/internal/logger"
	"github.com/canectors/spfanalyzer/pkg/dataset"
)

// ErrInvalidExpression is returned when the expression does not compile.
var ErrInvalidExpression = errors.New("invalid expression syntax")

// ConditionModule keeps the records for which a boolean expression holds.
// Columns are addressed by their header names; missing numeric cells are
// nil, so any comparison against them is false.
type ConditionModule struct {
	expression string
	program    *vm.Program
}

// NewCondition compiles expression. A syntax error, or an expression that
// cannot yield a boolean, is returned as a config error.
func NewCondition(expression string) (*ConditionModule, error) {
	// AllowUndefinedVariables lets misspelled or absent columns read as nil
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, errhandling.NewConfigError(
			fmt.Sprintf("invalid --where expression %q", expression),
			fmt.Errorf("%w: %v", ErrInvalidExpression, err),
		)
	}

	logger.Debug("condition module initialized", slog.String("expression", expression))

	return &ConditionModule{expression: expression, program: program}, nil
}

// Expression returns the source expression.
func (c *ConditionModule) Expression() string {
	return c.expression
}

// Process evaluates the expression against each record. Records for which
// it is false or fails to evaluate are dropped.
func (c *ConditionModule) Process(ctx context.Context, records []dataset.Record) ([]dataset.Record, error) {
	result := make([]dataset.Record, 0, len(records))
	var failed int

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output, err := expr.Run(c.program, record.Env())
		if err != nil {
			failed++
			logger.Debug("dropping record: condition evaluation failed",
				slog.Int64("record_id", record.RecordID),
				slog.String("expression", c.expression),
				slog.String("error", err.Error()),
			)
			continue
		}
		if keep, ok := output.(bool); ok && keep {
			result = append(result, record)
		}
	}

	logger.Debug("condition applied",
		slog.String("expression", c.expression),
		slog.Int("records_in", len(records)),
		slog.Int("records_kept", len(result)),
		slog.Int("evaluation_failures", failed),
	)
	return result, nil
}

// isWhitespaceOnly checks if a string contains only whitespace characters.
func isWhitespaceOnly(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

var (
	_ Module = (*ConditionModule)(nil)
	_ Module = PassThrough{}
)
