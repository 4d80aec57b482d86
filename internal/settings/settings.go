// Package settings holds the process-wide, operator-mutable execution
// options (spec §3 "Settings"). A Settings value is cheap to copy: job
// dispatch takes a snapshot by value so later edits never reach back into
// in-flight or completed jobs.
package settings

import "time"

// Settings are the recognized, process-wide options. All fields have the
// defaults listed in spec §3; Default constructs them.
type Settings struct {
	OutputFolder           string `json:"output_folder" yaml:"output_folder"`
	QueryTimeoutSecs       int    `json:"query_timeout_secs" yaml:"query_timeout_secs"`
	RetryCount             int    `json:"retry_count" yaml:"retry_count"`
	ValidationIntervalSecs int    `json:"validation_interval_secs" yaml:"validation_interval_secs"`
	ExportCSV              bool   `json:"export_csv" yaml:"export_csv"`
	ExportJSON             bool   `json:"export_json" yaml:"export_json"`
	ParseDynamics          bool   `json:"parse_dynamics" yaml:"parse_dynamics"`
}

// Default returns the spec-mandated defaults.
func Default() Settings {
	return Settings{
		OutputFolder:           "./output",
		QueryTimeoutSecs:       30,
		RetryCount:             0,
		ValidationIntervalSecs: 300,
		ExportCSV:              true,
		ExportJSON:             false,
		ParseDynamics:          true,
	}
}

// QueryTimeout returns QueryTimeoutSecs as a time.Duration.
func (s Settings) QueryTimeout() time.Duration {
	return time.Duration(s.QueryTimeoutSecs) * time.Second
}

// ValidationInterval returns ValidationIntervalSecs as a time.Duration.
func (s Settings) ValidationInterval() time.Duration {
	return time.Duration(s.ValidationIntervalSecs) * time.Second
}

// Clone returns a deep copy. Settings has no reference fields today, but
// Clone exists so callers taking a dispatch-time snapshot never need to
// reason about whether a future field addition aliases the live model.
func (s Settings) Clone() Settings {
	return s
}

// Validate reports the first violated invariant, or nil if S is well-formed.
func (s Settings) Validate() error {
	switch {
	case s.QueryTimeoutSecs <= 0:
		return errInvalid("query_timeout_secs must be positive")
	case s.RetryCount < 0:
		return errInvalid("retry_count must be non-negative")
	case s.ValidationIntervalSecs <= 0:
		return errInvalid("validation_interval_secs must be positive")
	case s.OutputFolder == "":
		return errInvalid("output_folder must not be empty")
	}
	return nil
}

type validationError string

func (e validationError) Error() string { return string(e) }

func errInvalid(msg string) error { return validationError(msg) }
