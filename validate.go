package udf

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ExpectArgCount checks that a function got between min and max arguments.
// A negative max means no upper bound.
func ExpectArgCount(name string, args *InitArgs, min, max int) error {
	n := args.Len()
	switch {
	case n < min && min == max:
		return NewError(ErrArgCount, fmt.Sprintf("%s requires exactly %d arguments, got %d", name, min, n))
	case n < min:
		return NewError(ErrArgCount, fmt.Sprintf("%s requires at least %d arguments, got %d", name, min, n))
	case max >= 0 && n > max:
		return NewError(ErrArgCount, fmt.Sprintf("%s accepts at most %d arguments, got %d", name, max, n))
	}
	return nil
}

// ExpectTypes consumes args and checks every argument against the allowed
// tags. All offending arguments are reported in one single-line message,
// e.g. "my_add only accepts integer values: arg 0 is not an integer".
func ExpectTypes(name string, args *InitArgs, allowed ...ArgType) error {
	var errs *multierror.Error
	for idx, arg := range args.All() {
		if !typeAllowed(arg.Value().Type(), allowed) {
			errs = multierror.Append(errs, fmt.Errorf("arg %d is not %s", idx, describeTypes(allowed, true)))
		}
	}
	if errs == nil {
		return nil
	}
	errs.ErrorFormat = listFormat
	return NewError(ErrArgType, fmt.Sprintf("%s only accepts %s values: %s", name, describeTypes(allowed, false), errs.Error()))
}

func typeAllowed(t ArgType, allowed []ArgType) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

var typeNouns = map[ArgType]string{
	INT_RESULT:     "integer",
	REAL_RESULT:    "real",
	STRING_RESULT:  "string",
	DECIMAL_RESULT: "decimal",
}

// describeTypes renders allowed tags as "integer or real", optionally with
// the indefinite article of the first noun.
func describeTypes(allowed []ArgType, article bool) string {
	nouns := make([]string, 0, len(allowed))
	for _, t := range allowed {
		if n, ok := typeNouns[t]; ok {
			nouns = append(nouns, n)
		}
	}
	res := strings.Join(nouns, " or ")
	if !article || res == "" {
		return res
	}
	switch res[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + res
	}
	return "a " + res
}

// listFormat keeps aggregated validation errors on one line, the host shows
// the message as is.
func listFormat(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
