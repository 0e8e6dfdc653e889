package logging

import "strings"

// defaultSensitiveKeys are parameter names whose values are
// masked in evaluation data regardless of configured secrets.
var defaultSensitiveKeys = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey",
}

// RedactingLogger is a decorator that redacts sensitive strings
// from log messages, field values and evaluation data before
// passing them to the inner logger.
type RedactingLogger struct {
	inner         Logger
	secrets       []string
	sensitiveKeys []string
}

// NewRedactingLogger creates a logger that redacts the given
// secrets from all messages and string values.
func NewRedactingLogger(
	inner Logger,
	secrets ...string,
) *RedactingLogger {
	return &RedactingLogger{
		inner:         inner,
		secrets:       secrets,
		sensitiveKeys: defaultSensitiveKeys,
	}
}

// WithSensitiveKeys replaces the list of parameter names whose
// values are always masked.
func (r *RedactingLogger) WithSensitiveKeys(
	keys ...string,
) *RedactingLogger {
	return &RedactingLogger{
		inner:         r.inner,
		secrets:       r.secrets,
		sensitiveKeys: keys,
	}
}

func (r *RedactingLogger) redact(msg string) string {
	result := msg
	for _, secret := range r.secrets {
		if secret != "" && len(secret) > 4 {
			result = strings.ReplaceAll(
				result, secret, redactValue(secret),
			)
		}
	}
	return result
}

// redactValue masks all but the first 4 characters.
func redactValue(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func (r *RedactingLogger) isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range r.sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (r *RedactingLogger) redactFields(
	fields []Field,
) []Field {
	result := make([]Field, len(fields))
	for i, f := range fields {
		switch {
		case r.isSensitive(f.Key):
			result[i] = Field{Key: f.Key, Value: "****"}
		default:
			if str, ok := f.Value.(string); ok {
				result[i] = Field{Key: f.Key, Value: r.redact(str)}
			} else {
				result[i] = f
			}
		}
	}
	return result
}

func (r *RedactingLogger) redactData(
	data map[string]any,
) map[string]any {
	if data == nil {
		return nil
	}
	result := make(map[string]any, len(data))
	for k, v := range data {
		switch {
		case r.isSensitive(k):
			result[k] = "****"
		default:
			if str, ok := v.(string); ok {
				result[k] = r.redact(str)
			} else {
				result[k] = v
			}
		}
	}
	return result
}

// Info logs a redacted informational message.
func (r *RedactingLogger) Info(
	msg string, fields ...Field,
) {
	r.inner.Info(r.redact(msg), r.redactFields(fields)...)
}

// Warn logs a redacted warning message.
func (r *RedactingLogger) Warn(
	msg string, fields ...Field,
) {
	r.inner.Warn(r.redact(msg), r.redactFields(fields)...)
}

// Error logs a redacted error message.
func (r *RedactingLogger) Error(
	msg string, fields ...Field,
) {
	r.inner.Error(r.redact(msg), r.redactFields(fields)...)
}

// Debug logs a redacted debug message.
func (r *RedactingLogger) Debug(
	msg string, fields ...Field,
) {
	r.inner.Debug(r.redact(msg), r.redactFields(fields)...)
}

// WithFields returns a RedactingLogger wrapping a new inner
// logger with the given fields applied.
func (r *RedactingLogger) WithFields(
	fields ...Field,
) Logger {
	return &RedactingLogger{
		inner: r.inner.WithFields(
			r.redactFields(fields)...,
		),
		secrets:       r.secrets,
		sensitiveKeys: r.sensitiveKeys,
	}
}

// LogEvaluation logs an evaluation with sensitive arguments,
// failure messages and errors redacted.
func (r *RedactingLogger) LogEvaluation(
	evaluation EvaluationLog,
) {
	evaluation.Data = r.redactData(evaluation.Data)
	if s, ok := evaluation.Result.(string); ok {
		evaluation.Result = r.redact(s)
	}
	if len(evaluation.Failures) > 0 {
		failures := make([]string, len(evaluation.Failures))
		for i, f := range evaluation.Failures {
			failures[i] = r.redact(f)
		}
		evaluation.Failures = failures
	}
	evaluation.Error = r.redact(evaluation.Error)
	r.inner.LogEvaluation(evaluation)
}

// Close closes the inner logger.
func (r *RedactingLogger) Close() error {
	return r.inner.Close()
}
