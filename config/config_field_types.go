package config

import (
	"fmt"
	"strings"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// OptLogLevel represents an optional log level parameter. It must match one of the level names "debug",
// "info", "warn", "error" or "none" (case-insensitive).
//
// The zero value OptLogLevel{} is valid and undefined (IsDefined() is false).
type OptLogLevel struct {
	level ldlog.LogLevel
}

// NewOptLogLevel creates an OptLogLevel that wraps the given value.
func NewOptLogLevel(level ldlog.LogLevel) OptLogLevel {
	return OptLogLevel{level: level}
}

// NewOptLogLevelFromString creates an OptLogLevel from a string that must either be a valid log level
// name or an empty string.
func NewOptLogLevelFromString(levelName string) (OptLogLevel, error) {
	if levelName == "" {
		return OptLogLevel{}, nil
	}
	for _, level := range []ldlog.LogLevel{ldlog.Debug, ldlog.Info, ldlog.Warn, ldlog.Error, ldlog.None} {
		if strings.EqualFold(level.Name(), levelName) {
			return NewOptLogLevel(level), nil
		}
	}
	return OptLogLevel{}, errBadLogLevel(levelName)
}

// IsDefined returns true if the instance contains a value.
func (o OptLogLevel) IsDefined() bool {
	return o.level != 0
}

// GetOrElse returns the wrapped value, or the alternative value if there is no value.
func (o OptLogLevel) GetOrElse(orElseValue ldlog.LogLevel) ldlog.LogLevel {
	if o.level == 0 {
		return orElseValue
	}
	return o.level
}

// UnmarshalText attempts to parse the value from a byte string, using the same logic as
// NewOptLogLevelFromString.
func (o *OptLogLevel) UnmarshalText(data []byte) error {
	opt, err := NewOptLogLevelFromString(string(data))
	if err == nil {
		*o = opt
	}
	return err
}

// ParseCustomHeaders converts a list of "Name: value" entries into a map. Entries with an empty value
// are kept here; the request builder decides what to do with them.
func ParseCustomHeaders(list ct.OptStringList) (map[string]string, error) {
	return parsePairs(list, ":", errBadCustomHeader)
}

// ParseContextProperties converts a list of "name=value" entries into a map.
func ParseContextProperties(list ct.OptStringList) (map[string]string, error) {
	return parsePairs(list, "=", errBadContextProperty)
}

func parsePairs(list ct.OptStringList, sep string, makeErr func(string) error) (map[string]string, error) {
	values := list.Values()
	if len(values) == 0 {
		return nil, nil
	}
	ret := make(map[string]string, len(values))
	for _, entry := range values {
		p := strings.Index(entry, sep)
		if p <= 0 {
			return nil, makeErr(entry)
		}
		name := strings.TrimSpace(entry[:p])
		if name == "" {
			return nil, makeErr(entry)
		}
		ret[name] = strings.TrimSpace(entry[p+1:])
	}
	return ret, nil
}

func errBadLogLevel(s string) error {
	return fmt.Errorf("%q is not a valid log level", s)
}

func errBadCustomHeader(s string) error {
	return fmt.Errorf("%q is not a valid custom header; expected \"Name: value\"", s)
}

func errBadContextProperty(s string) error {
	return fmt.Errorf("%q is not a valid context property; expected \"name=value\"", s)
}
