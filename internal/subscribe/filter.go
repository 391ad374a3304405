package subscribe

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/iamnno/IES/internal/telemetry"
)

// Filter wraps a compiled CEL program evaluated against each record before
// delivery to one subscriber. A disabled filter matches everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expr. An empty expression yields a disabled filter.
//
// Available variables: road_state, user_id, x, y, z, latitude, longitude,
// ts_ms (record timestamp in Unix ms), now_ms.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("road_state", cel.StringType),
		cel.Variable("user_id", cel.IntType),
		cel.Variable("x", cel.DoubleType),
		cel.Variable("y", cel.DoubleType),
		cel.Variable("z", cel.DoubleType),
		cel.Variable("latitude", cel.DoubleType),
		cel.Variable("longitude", cel.DoubleType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match evaluates the filter against rec. Evaluation errors and non-bool
// results count as no match.
func (f Filter) Match(rec telemetry.Record) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"road_state": rec.RoadState,
		"user_id":    rec.UserID,
		"x":          rec.X,
		"y":          rec.Y,
		"z":          rec.Z,
		"latitude":   rec.Latitude,
		"longitude":  rec.Longitude,
		"ts_ms":      rec.Timestamp.UnixMilli(),
		"now_ms":     time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
