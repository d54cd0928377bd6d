package manifest

import (
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/semihalev/go-udf"
	"github.com/semihalev/go-udf/host"
)

var typeKeys = map[string]udf.ArgType{
	"int":     udf.INT_RESULT,
	"integer": udf.INT_RESULT,
	"real":    udf.REAL_RESULT,
	"string":  udf.STRING_RESULT,
	"decimal": udf.DECIMAL_RESULT,
}

// Values converts the row literals of the case to host arguments.
//
// Plain numbers and strings map to INT, REAL and STRING arguments. Tables
// spell out the rest: {decimal: "1.50"}, {null: integer}, and any literal
// can carry its expression text with "as", e.g. {int: 5, as: "a+b"}.
func (c Case) Values() ([][]host.Value, error) {
	rows := make([][]host.Value, len(c.Rows))
	for r, row := range c.Rows {
		vals := make([]host.Value, len(row.Args))
		for i, lit := range row.Args {
			v, err := ParseValue(lit)
			if err != nil {
				return nil, fmt.Errorf("row %d arg %d: %w", r, i, err)
			}
			vals[i] = v
		}
		rows[r] = vals
	}
	if _, err := host.Declare(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseValue converts one decoded literal to a host argument.
func ParseValue(lit any) (host.Value, error) {
	switch v := lit.(type) {
	case nil:
		return host.Value{}, fmt.Errorf("untyped null, use {null: <type>}")
	case int:
		return host.Int(int64(v)), nil
	case int64:
		return host.Int(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return host.Value{}, fmt.Errorf("integer %d out of range", v)
		}
		return host.Int(int64(v)), nil
	case float64:
		return host.Real(v), nil
	case string:
		return host.String(v), nil
	case map[string]any:
		return parseTable(v)
	case map[any]any:
		// yaml decodes the key of {null: int} as a null, not as a string
		m := make(map[string]any, len(v))
		for k, val := range v {
			if k == nil {
				m["null"] = val
				continue
			}
			m[fmt.Sprint(k)] = val
		}
		return parseTable(m)
	}
	return host.Value{}, fmt.Errorf("unsupported literal %v (%T)", lit, lit)
}

func parseTable(m map[string]any) (host.Value, error) {
	var attr string
	if as, ok := m["as"]; ok {
		s, ok := as.(string)
		if !ok {
			return host.Value{}, fmt.Errorf("\"as\" must be a string, got %T", as)
		}
		attr = s
	}

	var res host.Value
	found := 0
	for k, raw := range m {
		if k == "as" {
			continue
		}
		found++
		v, err := parseTyped(k, raw)
		if err != nil {
			return host.Value{}, err
		}
		res = v
	}
	if found != 1 {
		return host.Value{}, fmt.Errorf("table literal needs exactly one of null, int, real, string, decimal")
	}
	if attr != "" {
		res = res.Named(attr)
	}
	return res, nil
}

func parseTyped(key string, raw any) (host.Value, error) {
	if key == "null" {
		name, ok := raw.(string)
		if !ok {
			return host.Value{}, fmt.Errorf("null type must be a string, got %T", raw)
		}
		t, ok := typeKeys[strings.ToLower(name)]
		if !ok {
			return host.Value{}, fmt.Errorf("unknown null type %q", name)
		}
		return host.Null(t), nil
	}

	t, ok := typeKeys[key]
	if !ok {
		return host.Value{}, fmt.Errorf("unknown literal type %q", key)
	}
	switch t {
	case udf.INT_RESULT:
		n, ok := asInt(raw)
		if !ok {
			return host.Value{}, fmt.Errorf("%s literal must be an integer, got %v", key, raw)
		}
		return host.Int(n), nil
	case udf.REAL_RESULT:
		f, ok := asFloat(raw)
		if !ok {
			return host.Value{}, fmt.Errorf("real literal must be a number, got %v", raw)
		}
		return host.Real(f), nil
	case udf.DECIMAL_RESULT:
		s, ok := raw.(string)
		if !ok {
			s = fmt.Sprint(raw)
		}
		return host.Decimal(s), nil
	default:
		s, ok := raw.(string)
		if !ok {
			return host.Value{}, fmt.Errorf("string literal must be a string, got %T", raw)
		}
		return host.String(s), nil
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		return int64(n), n == math.Trunc(n) && n >= math.MinInt64 && n < 1<<63
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

const realTolerance = 1e-9

// Verify compares a case result with the expectations of c and returns
// every mismatch.
func (c Case) Verify(rt udf.ReturnType, res host.CaseResult) error {
	errs := &multierror.Error{ErrorFormat: joinFormat}
	if c.InitError != "" || res.InitError != "" {
		switch {
		case c.InitError == "":
			errs = multierror.Append(errs, fmt.Errorf("unexpected init error: %s", res.InitError))
		case res.InitError == "":
			errs = multierror.Append(errs, fmt.Errorf("expected init error %q, init succeeded", c.InitError))
		case !strings.Contains(res.InitError, c.InitError):
			errs = multierror.Append(errs, fmt.Errorf("init error %q does not contain %q", res.InitError, c.InitError))
		}
		return errs.ErrorOrNil()
	}

	if len(res.Rows) != len(c.Rows) {
		return fmt.Errorf("got %d rows, expected %d", len(res.Rows), len(c.Rows))
	}
	for i, want := range c.Rows {
		if err := want.verify(rt, res.Rows[i]); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("row %d: %w", i, err))
		}
	}
	return errs.ErrorOrNil()
}

func (r Row) verify(rt udf.ReturnType, got udf.RowResult) error {
	switch {
	case r.Error || got.Error:
		if r.Error != got.Error {
			return fmt.Errorf("error flag %v, expected %v", got.Error, r.Error)
		}
		return nil
	case r.Null || got.Null:
		if r.Null != got.Null {
			return fmt.Errorf("null flag %v, expected %v", got.Null, r.Null)
		}
		return nil
	case r.Want == nil:
		return nil
	}

	if rt == udf.ReturnReal {
		want, ok := asFloat(r.Want)
		if !ok {
			return fmt.Errorf("expected value %v is not a number", r.Want)
		}
		if math.Abs(got.Real-want) > realTolerance*math.Max(1, math.Abs(want)) {
			return fmt.Errorf("got %v, expected %v", got.Real, want)
		}
		return nil
	}
	want, ok := asInt(r.Want)
	if !ok {
		return fmt.Errorf("expected value %v is not an integer", r.Want)
	}
	if got.Int != want {
		return fmt.Errorf("got %d, expected %d", got.Int, want)
	}
	return nil
}

// joinFormat renders aggregated errors on one line.
func joinFormat(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
