package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var ErrValidationFailed = errors.New("tool params validation failed")

// validateParams checks params against the declared schema: every required
// parameter present, every present declared parameter type-compatible.
// Undeclared parameters pass through untouched; tools that care reject them.
func validateParams(s Schema, params map[string]any) error {
	for name, p := range s.Params {
		if !p.Required {
			continue
		}
		if _, ok := params[name]; !ok {
			return fmt.Errorf("%w: missing required parameter %q", ErrValidationFailed, name)
		}
	}

	for name, value := range params {
		p, declared := s.Params[name]
		if !declared {
			continue
		}
		if !typeMatches(p.Type, value) {
			return fmt.Errorf("%w: parameter %q must be a %s", ErrValidationFailed, name, p.Type)
		}
	}

	return nil
}

func typeMatches(t ParamType, value any) bool {
	if value == nil {
		return false
	}
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch value.(type) {
		case int, int32, int64, float32, float64, json.Number:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		return reflect.TypeOf(value).Kind() == reflect.Slice
	case TypeObject:
		return reflect.TypeOf(value).Kind() == reflect.Map
	default:
		// Unknown declared type (remote schemas may use richer JSON-Schema
		// types): no constraint, the tool validates for itself.
		return true
	}
}
