package actions

import (
	"fmt"
	"math"
	"time"

	"github.com/tradedesk/deskd/internal/domain"
)

// Validate checks raw user input against a schema and returns the typed
// parameter set. On any problem it returns *domain.ValidationError with a
// per-field message; the caller must not invoke the action handler then.
//
// Defaults are applied for absent fields. Optional fields accept nil and
// are unwrapped before kind dispatch.
func Validate(schema Schema, raw map[string]interface{}) (Params, error) {
	problems := make(map[string]string)
	params := make(Params, len(schema))

	for name := range raw {
		if _, declared := schema[name]; !declared {
			problems[name] = "not a declared parameter"
		}
	}

	for name, field := range schema {
		value, present := raw[name]

		if !present || value == nil {
			if field.Default != nil {
				params[name] = field.Default
				continue
			}
			if present && field.Optional {
				params[name] = nil
				continue
			}
			if field.Required {
				problems[name] = "required"
			}
			continue
		}

		typed, err := coerce(field, value)
		if err != nil {
			problems[name] = err.Error()
			continue
		}
		params[name] = typed
	}

	if len(problems) > 0 {
		return nil, &domain.ValidationError{Fields: problems}
	}
	return params, nil
}

// coerce converts one raw value to the field's kind
func coerce(field Field, value interface{}) (interface{}, error) {
	switch field.Kind {
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean")
		}
		return b, nil

	case KindInt:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected a whole number")
			}
			return int64(v), nil
		default:
			return nil, fmt.Errorf("expected an integer")
		}

	case KindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		default:
			return nil, fmt.Errorf("expected a number")
		}

	case KindText:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected text")
		}
		return s, nil

	case KindDate:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected a date string")
		}
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("expected a date in %s format", DateLayout)
		}
		return t, nil

	case KindEnum:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected one of the allowed values")
		}
		for _, option := range field.Options {
			if s == option {
				return s, nil
			}
		}
		return nil, fmt.Errorf("must be one of %v", field.Options)

	default:
		return nil, fmt.Errorf("unsupported field kind: %s", field.Kind)
	}
}
