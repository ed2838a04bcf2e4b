package hcl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined reports whether an optional attribute was present in the
// source. gohcl fills omitted optional expressions with a zero-width
// placeholder, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

// candidatesFromExpr evaluates a values attribute. A list, set or tuple of
// primitives yields one candidate per element; a single primitive yields one
// candidate. Numbers and bools are rendered the way HCL prints them.
func candidatesFromExpr(expr hcl.Expression) ([]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, errors.New("values must be known constants")
	}

	ty := val.Type()
	if !(ty.IsListType() || ty.IsSetType() || ty.IsTupleType()) {
		s, err := primitiveString(val)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	out := make([]string, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		idx, elem := it.Element()
		s, err := primitiveString(elem)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", idx.GoString(), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func primitiveString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", errors.New("null value")
	}
	if !v.Type().IsPrimitiveType() {
		return "", fmt.Errorf("expected a string, number or bool, got %s", v.Type().FriendlyName())
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}

// durationFromExpr accepts a Go duration string ("90s", "10m") or a number
// of seconds.
func durationFromExpr(expr hcl.Expression) (time.Duration, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.IsNull() {
		return 0, nil
	}

	switch val.Type() {
	case cty.Number:
		var secs float64
		if err := gocty.FromCtyValue(val, &secs); err != nil {
			return 0, err
		}
		if secs < 0 {
			return 0, errors.New("duration must not be negative")
		}
		return time.Duration(secs * float64(time.Second)), nil
	case cty.String:
		d, err := time.ParseDuration(val.AsString())
		if err != nil {
			return 0, err
		}
		if d < 0 {
			return 0, errors.New("duration must not be negative")
		}
		return d, nil
	default:
		return 0, fmt.Errorf("expected a duration string or seconds, got %s", val.Type().FriendlyName())
	}
}
