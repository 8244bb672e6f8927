package orchestrator

import "strconv"

// Entity maps come out of JSON, so numbers may arrive as float64, string or
// json.Number-ish values depending on the backend. These helpers normalize
// access without panicking on surprises.

func entityString(entities map[string]interface{}, key string) string {
	if entities == nil {
		return ""
	}
	if value, ok := entities[key].(string); ok {
		return value
	}
	return ""
}

func entityFloat(entities map[string]interface{}, key string) (float64, bool) {
	if entities == nil {
		return 0, false
	}
	switch value := entities[key].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
