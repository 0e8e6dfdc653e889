package checker

import "gopkg.in/yaml.v3"

// executableExample is a description example that names arguments
// and, optionally, the expected result:
//
//	{args: {x: 1, y: 2}, result: 3}
type executableExample struct {
	args      map[string]any
	result    any
	hasResult bool
}

// parseExample decodes text as a YAML (or JSON) mapping with an
// args key. Anything else is prose and reports false.
func parseExample(text string) (executableExample, bool) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil || raw == nil {
		return executableExample{}, false
	}

	argsRaw, ok := raw["args"]
	if !ok {
		return executableExample{}, false
	}

	var args map[string]any
	switch a := argsRaw.(type) {
	case nil:
		args = map[string]any{}
	case map[string]any:
		args = a
	default:
		return executableExample{}, false
	}

	ex := executableExample{args: args}
	ex.result, ex.hasResult = raw["result"]
	return ex, true
}
