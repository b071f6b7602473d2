package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/lookbusy1344/g10toolchain/ppvalue"
)

type builtinFunc func(args []ppvalue.Value) (ppvalue.Value, error)

// turn is one full turn in radians, per spec.md 4.3: trig functions take
// their argument in turns, not radians.
const turn = 2 * math.Pi

func wantArgs(args []ppvalue.Value, n int, name string) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func intArgs(args []ppvalue.Value, name string, n int) ([]int64, error) {
	if err := wantArgs(args, n, name); err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i, a := range args {
		v, err := a.AsInt64()
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func floatArgs(args []ppvalue.Value, name string, n int) ([]float64, error) {
	if err := wantArgs(args, n, name); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := a.AsFloat64()
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func strArg(args []ppvalue.Value, name string, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("%s: missing string argument", name)
	}
	return args[idx].String(), nil
}

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"high": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := intArgs(a, "high", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.IntValue((v[0] >> 8) & 0xFF), nil
		},
		"low": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := intArgs(a, "low", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.IntValue(v[0] & 0xFF), nil
		},
		"bitwidth": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := intArgs(a, "bitwidth", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			n := v[0]
			if n < 0 {
				n = ^n
			}
			width := int64(0)
			for n != 0 {
				width++
				n >>= 1
			}
			return ppvalue.IntValue(width), nil
		},
		"abs": func(a []ppvalue.Value) (ppvalue.Value, error) {
			if err := wantArgs(a, 1, "abs"); err != nil {
				return ppvalue.Value{}, err
			}
			if a[0].Type == ppvalue.Number {
				f, _ := a[0].AsFloat64()
				return ppvalue.NumberValue(math.Abs(f)), nil
			}
			v, err := intArgs(a, "abs", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			n := v[0]
			if n < 0 {
				n = -n
			}
			return ppvalue.IntValue(n), nil
		},
		"min": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "min", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return numericResult(a, math.Min(v[0], v[1])), nil
		},
		"max": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "max", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return numericResult(a, math.Max(v[0], v[1])), nil
		},
		"clamp": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "clamp", 3)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return numericResult(a, math.Min(math.Max(v[0], v[1]), v[2])), nil
		},
		"fmul": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "fmul", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(v[0] * v[1]), nil
		},
		"fdiv": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "fdiv", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[1] == 0 {
				return ppvalue.Value{}, fmt.Errorf("division by zero")
			}
			return ppvalue.NumberValue(v[0] / v[1]), nil
		},
		"fmod": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "fmod", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[1] == 0 {
				return ppvalue.Value{}, fmt.Errorf("division by zero")
			}
			return ppvalue.NumberValue(math.Mod(v[0], v[1])), nil
		},
		"fint": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "fint", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.IntValue(int64(math.Trunc(v[0]))), nil
		},
		"ffrac": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "ffrac", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			_, frac := math.Modf(v[0])
			return ppvalue.NumberValue(frac), nil
		},
		"round": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "round", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Round(v[0])), nil
		},
		"ceil": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "ceil", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Ceil(v[0])), nil
		},
		"floor": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "floor", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Floor(v[0])), nil
		},
		"trunc": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "trunc", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Trunc(v[0])), nil
		},
		"pow": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "pow", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Pow(v[0], v[1])), nil
		},
		"sqrt": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "sqrt", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[0] < 0 {
				return ppvalue.Value{}, fmt.Errorf("sqrt of negative number")
			}
			return ppvalue.NumberValue(math.Sqrt(v[0])), nil
		},
		"exp": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "exp", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Exp(v[0])), nil
		},
		"ln": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "ln", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[0] <= 0 {
				return ppvalue.Value{}, fmt.Errorf("ln of non-positive number")
			}
			return ppvalue.NumberValue(math.Log(v[0])), nil
		},
		"log2": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "log2", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[0] <= 0 {
				return ppvalue.Value{}, fmt.Errorf("log2 of non-positive number")
			}
			return ppvalue.NumberValue(math.Log2(v[0])), nil
		},
		"log10": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "log10", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[0] <= 0 {
				return ppvalue.Value{}, fmt.Errorf("log10 of non-positive number")
			}
			return ppvalue.NumberValue(math.Log10(v[0])), nil
		},
		"log": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "log", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[0] <= 0 || v[1] <= 0 || v[1] == 1 {
				return ppvalue.Value{}, fmt.Errorf("log domain error")
			}
			return ppvalue.NumberValue(math.Log(v[0]) / math.Log(v[1])), nil
		},
		"sin": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "sin", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Sin(v[0] * turn)), nil
		},
		"cos": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "cos", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Cos(v[0] * turn)), nil
		},
		"tan": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "tan", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Tan(v[0] * turn)), nil
		},
		"asin": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "asin", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[0] < -1 || v[0] > 1 {
				return ppvalue.Value{}, fmt.Errorf("asin argument outside [-1, 1]")
			}
			return ppvalue.NumberValue(math.Asin(v[0]) / turn), nil
		},
		"acos": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "acos", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			if v[0] < -1 || v[0] > 1 {
				return ppvalue.Value{}, fmt.Errorf("acos argument outside [-1, 1]")
			}
			return ppvalue.NumberValue(math.Acos(v[0]) / turn), nil
		},
		"atan": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "atan", 1)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Atan(v[0]) / turn), nil
		},
		"atan2": func(a []ppvalue.Value) (ppvalue.Value, error) {
			v, err := floatArgs(a, "atan2", 2)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.NumberValue(math.Atan2(v[0], v[1]) / turn), nil
		},
		"strlen": func(a []ppvalue.Value) (ppvalue.Value, error) {
			s, err := strArg(a, "strlen", 0)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.IntValue(int64(len(s))), nil
		},
		"strcmp": func(a []ppvalue.Value) (ppvalue.Value, error) {
			if err := wantArgs(a, 2, "strcmp"); err != nil {
				return ppvalue.Value{}, err
			}
			s1, s2 := a[0].String(), a[1].String()
			switch {
			case s1 < s2:
				return ppvalue.IntValue(-1), nil
			case s1 > s2:
				return ppvalue.IntValue(1), nil
			default:
				return ppvalue.IntValue(0), nil
			}
		},
		"substr": func(a []ppvalue.Value) (ppvalue.Value, error) {
			if len(a) != 2 && len(a) != 3 {
				return ppvalue.Value{}, fmt.Errorf("substr expects 2 or 3 arguments, got %d", len(a))
			}
			s := a[0].String()
			start, err := a[1].AsInt64()
			if err != nil || start < 0 || int(start) > len(s) {
				return ppvalue.Value{}, fmt.Errorf("substr: invalid start index")
			}
			end := int64(len(s))
			if len(a) == 3 {
				n, err := a[2].AsInt64()
				if err != nil || n < 0 {
					return ppvalue.Value{}, fmt.Errorf("substr: invalid length")
				}
				end = start + n
				if end > int64(len(s)) {
					end = int64(len(s))
				}
			}
			return ppvalue.StringValue(s[start:end]), nil
		},
		"indexof": func(a []ppvalue.Value) (ppvalue.Value, error) {
			if err := wantArgs(a, 2, "indexof"); err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.IntValue(int64(strings.Index(a[0].String(), a[1].String()))), nil
		},
		"toupper": func(a []ppvalue.Value) (ppvalue.Value, error) {
			s, err := strArg(a, "toupper", 0)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.StringValue(strings.ToUpper(s)), nil
		},
		"tolower": func(a []ppvalue.Value) (ppvalue.Value, error) {
			s, err := strArg(a, "tolower", 0)
			if err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.StringValue(strings.ToLower(s)), nil
		},
		"concat": func(a []ppvalue.Value) (ppvalue.Value, error) {
			var sb strings.Builder
			for _, v := range a {
				sb.WriteString(v.String())
			}
			return ppvalue.StringValue(sb.String()), nil
		},
		"typeof": func(a []ppvalue.Value) (ppvalue.Value, error) {
			if err := wantArgs(a, 1, "typeof"); err != nil {
				return ppvalue.Value{}, err
			}
			return ppvalue.StringValue(a[0].Type.String()), nil
		},
	}
}

// numericResult preserves fixed-point type if any input argument was a
// number, matching the evaluator's general int/number promotion rule.
func numericResult(args []ppvalue.Value, f float64) ppvalue.Value {
	for _, a := range args {
		if a.Type == ppvalue.Number {
			return ppvalue.NumberValue(f)
		}
	}
	return ppvalue.IntValue(int64(f))
}
