package nutrition

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RequiredUserFields lists registration fields in the order their
// "is required" messages are reported.
var RequiredUserFields = []string{"name", "age", "weight", "height", "gender", "goal"}

type numericRule struct {
	field    string
	label    string
	max      float64
	rangeMsg string
}

var numericRules = []numericRule{
	{field: "age", label: "Age", max: 150, rangeMsg: "Age must be between 1 and 150"},
	{field: "weight", label: "Weight", max: 500, rangeMsg: "Weight must be between 1 and 500 kg"},
	{field: "height", label: "Height", max: 300, rangeMsg: "Height must be between 1 and 300 cm"},
}

// ValidateUser checks raw registration input and returns every problem found.
// An empty result means the input is valid.
func ValidateUser(raw map[string]any) []string {
	var errs []string

	for _, field := range RequiredUserFields {
		v, ok := raw[field]
		if !ok || isEmpty(v) || (field == "name" && isBlankString(v)) {
			errs = append(errs, fmt.Sprintf("%s is required", field))
		}
	}

	for _, rule := range numericRules {
		v, ok := raw[rule.field]
		if !ok {
			continue
		}
		n, err := ToFloat(v)
		if err != nil {
			errs = append(errs, rule.label+" must be a valid number")
			continue
		}
		if n <= 0 || n > rule.max {
			errs = append(errs, rule.rangeMsg)
		}
	}

	if v, ok := raw["gender"]; ok {
		g, isString := v.(string)
		if !isString || !validGender(g) {
			errs = append(errs, "Gender must be 'male' or 'female'")
		}
	}

	return errs
}

func validGender(g string) bool {
	g = strings.ToLower(g)
	return g == "male" || g == "female"
}

// ToFloat converts a decoded JSON value to a number. Strings are trimmed and
// parsed, and a string too large for float64 yields ±Inf. Booleans count as 1
// and 0.
func ToFloat(v any) (float64, error) {
	var (
		n   float64
		err error
	)
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		n, err = x.Float64()
	case bool:
		if x {
			n = 1
		}
	case string:
		n, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		if errors.Is(err, strconv.ErrRange) && math.IsInf(n, 0) {
			err = nil
		}
	default:
		return 0, fmt.Errorf("unsupported numeric value of type %T", v)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) {
		return 0, fmt.Errorf("not a number")
	}
	return n, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func isBlankString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
