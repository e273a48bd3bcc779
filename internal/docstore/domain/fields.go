package domain

import (
	"strconv"
	"time"
)

// Field accessors tolerate the loose typing of JSON documents: numbers
// arrive as float64, older rows may carry strings.

func (d Document) StringField(key string) string {
	value, _ := d.Fields[key].(string)
	return value
}

func (d Document) IntField(key string) int {
	switch typed := d.Fields[key].(type) {
	case float64:
		return int(typed)
	case int:
		return typed
	case int64:
		return int(typed)
	case string:
		parsed, err := strconv.Atoi(typed)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (d Document) FloatField(key string) float64 {
	switch typed := d.Fields[key].(type) {
	case float64:
		return typed
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (d Document) BoolField(key string) bool {
	value, _ := d.Fields[key].(bool)
	return value
}

func (d Document) TimeField(key string) time.Time {
	switch typed := d.Fields[key].(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, typed)
		if err != nil {
			return time.Time{}
		}
		return parsed
	case time.Time:
		return typed
	default:
		return time.Time{}
	}
}
