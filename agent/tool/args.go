package tool

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", contractx.ErrValidation, key)
	}
	return strings.TrimSpace(s), nil
}

func numberArg(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number", contractx.ErrValidation, key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", contractx.ErrValidation, key)
	}
}

// requiredNumberArg is numberArg for parameters the tool cannot default.
func requiredNumberArg(args map[string]any, key string) (float64, error) {
	if args[key] == nil {
		return 0, fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	return numberArg(args, key)
}

func stringsArg(args map[string]any, key string) ([]string, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must contain strings", contractx.ErrValidation, key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list of strings", contractx.ErrValidation, key)
	}
}

// timeArg accepts a time.Time or an RFC3339 string. ok is false when absent.
func timeArg(args map[string]any, key string) (time.Time, bool, error) {
	switch v := args[key].(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v.UTC(), true, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return time.Time{}, false, nil
		}
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %s must be RFC3339", contractx.ErrValidation, key)
		}
		return ts.UTC(), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("%w: %s must be a timestamp", contractx.ErrValidation, key)
	}
}
