package logging

import "time"

// LogField creates a Field from a key-value pair.
func LogField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// StringField creates a Field with a string value.
func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// BoolField creates a Field with a boolean value.
func BoolField(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// ErrorField creates a Field for an error value. If err is nil,
// the value is set to the string "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// CheckerField tags an entry with the checker kind.
func CheckerField(name string) Field {
	return Field{Key: "checker", Value: name}
}

// SubjectField tags an entry with the callable under test.
func SubjectField(name string) Field {
	return Field{Key: "subject", Value: name}
}

// RunIDField tags an entry with a run identifier.
func RunIDField(id string) Field {
	return Field{Key: "run_id", Value: id}
}

// DurationField records d in milliseconds under "duration_ms".
func DurationField(d time.Duration) Field {
	return Field{Key: "duration_ms", Value: d.Milliseconds()}
}

// DurationMsField records a millisecond count under "duration_ms".
func DurationMsField(ms int64) Field {
	return Field{Key: "duration_ms", Value: ms}
}
