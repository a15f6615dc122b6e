package validate

import "log/slog"

// UnrecognizedPolicy controls how headers matched by no schema column are
// handled during validation.
type UnrecognizedPolicy string

const (
	// UnrecognizedIgnore tolerates extra columns silently.
	UnrecognizedIgnore UnrecognizedPolicy = "ignore"

	// UnrecognizedWarn tolerates extra columns but logs a warning per
	// header. This is the default.
	UnrecognizedWarn UnrecognizedPolicy = "warn"

	// UnrecognizedReject reports extra columns as violations.
	UnrecognizedReject UnrecognizedPolicy = "reject"
)

// String returns the string representation of UnrecognizedPolicy.
func (p UnrecognizedPolicy) String() string {
	return string(p)
}

// IsValid checks if the UnrecognizedPolicy is a valid value.
func (p UnrecognizedPolicy) IsValid() bool {
	switch p {
	case UnrecognizedIgnore, UnrecognizedWarn, UnrecognizedReject:
		return true
	default:
		return false
	}
}

// Policy configures a validation pass.
type Policy struct {
	// Unrecognized is the handling of headers no schema column matches.
	// The zero value falls back to UnrecognizedWarn.
	Unrecognized UnrecognizedPolicy

	// Logger receives per-pass diagnostics. nil falls back to slog.Default.
	Logger *slog.Logger
}

func (p Policy) unrecognized() UnrecognizedPolicy {
	if p.Unrecognized == "" {
		return UnrecognizedWarn
	}
	return p.Unrecognized
}

func (p Policy) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
