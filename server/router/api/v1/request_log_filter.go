package v1

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"github.com/peswahq/ussd-simulator/store"
)

// filterRequestLogs evaluates a CEL expression against each log row and
// keeps the rows for which it yields true.
func filterRequestLogs(logs []*store.RequestLog, expr string) ([]*store.RequestLog, error) {
	env, err := cel.NewEnv(
		cel.Variable("session_id", cel.StringType),
		cel.Variable("success", cel.BoolType),
		cel.Variable("error", cel.StringType),
		cel.Variable("duration_ms", cel.IntType),
		cel.Variable("msisdn", cel.StringType),
		cel.Variable("msg", cel.StringType),
		cel.Variable("network", cel.StringType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter environment")
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrap(issues.Err(), "failed to compile filter")
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build filter program")
	}

	filtered := []*store.RequestLog{}
	for _, entry := range logs {
		activation := map[string]any{
			"session_id":  entry.SessionID,
			"success":     entry.Success,
			"error":       entry.Error,
			"duration_ms": entry.Duration,
			"msisdn":      entry.Request.USSDReq.Msisdn,
			"msg":         entry.Request.USSDReq.Msg,
			"network":     entry.Request.USSDReq.Network,
		}
		out, _, err := program.Eval(activation)
		if err != nil {
			return nil, errors.Wrap(err, "failed to evaluate filter")
		}
		if keep, ok := out.Value().(bool); ok && keep {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
