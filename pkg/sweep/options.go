package sweep

import (
	"encoding/json"
	"strings"
)

// Options configures one run of the recycle-bin sweep. Field names double
// as the JSON keys of the task data; decoding ignores case.
type Options struct {
	ClearObjects              bool
	ClearObjectsOlderThanDays int
	ClearPages                bool
	ClearPagesOlderThanDays   int
}

const parseFailurePrefix = "Failed to parse task data. Task data expected in format:\n"

// ParseOptions decodes and validates raw task data. Empty input, malformed
// JSON and a JSON null are all rejected with a *ConfigError whose message
// includes an example payload.
func ParseOptions(data string) (Options, error) {
	if strings.TrimSpace(data) == "" {
		return Options{}, NewConfigError(parseFailureMessage(), nil)
	}

	var opts *Options
	if err := json.Unmarshal([]byte(data), &opts); err != nil {
		return Options{}, NewConfigError(parseFailureMessage(), err)
	}
	if opts == nil {
		return Options{}, NewConfigError(parseFailureMessage(), nil)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return *opts, nil
}

// Validate checks the age thresholds of the enabled record kinds.
func (o Options) Validate() error {
	if o.ClearObjects && o.ClearObjectsOlderThanDays < 0 {
		return NewConfigError("ClearObjectsOlderThanDays must be 0 or greater.", nil)
	}
	if o.ClearPages && o.ClearPagesOlderThanDays < 0 {
		return NewConfigError("ClearPagesOlderThanDays must be 0 or greater.", nil)
	}
	return nil
}

// ExampleOptions returns the zero-valued options rendered as indented
// JSON, the format operators are expected to supply.
func ExampleOptions() string {
	b, err := json.MarshalIndent(Options{}, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func parseFailureMessage() string {
	return parseFailurePrefix + ExampleOptions()
}
