package model

import "sort"

// Names of the context fields that can be set directly rather than as custom properties.
const (
	FieldAppName       = "appName"
	FieldEnvironment   = "environment"
	FieldUserID        = "userId"
	FieldSessionID     = "sessionId"
	FieldRemoteAddress = "remoteAddress"
	FieldCurrentTime   = "currentTime"
	FieldProperties    = "properties"
)

// DefaultEnvironment is the environment used when none is configured.
const DefaultEnvironment = "default"

// Context is the set of attributes sent to the proxy with every toggle request.
//
// AppName and Environment are static: they are fixed when the client is created. The other fields
// are mutable through the client's context operations.
type Context struct {
	AppName       string            `json:"appName,omitempty"`
	Environment   string            `json:"environment,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	SessionID     string            `json:"sessionId,omitempty"`
	RemoteAddress string            `json:"remoteAddress,omitempty"`
	CurrentTime   string            `json:"currentTime,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// IsDefinedField returns true for the mutable context fields that are not custom properties.
func IsDefinedField(name string) bool {
	switch name {
	case FieldUserID, FieldSessionID, FieldRemoteAddress, FieldCurrentTime:
		return true
	}
	return false
}

// IsStaticField returns true for fields that cannot be changed after the client is created.
func IsStaticField(name string) bool {
	return name == FieldAppName || name == FieldEnvironment
}

// Copy returns a deep copy of the context.
func (c Context) Copy() Context {
	ret := c
	if c.Properties != nil {
		ret.Properties = make(map[string]string, len(c.Properties))
		for k, v := range c.Properties {
			ret.Properties[k] = v
		}
	}
	return ret
}

// Fields returns the non-empty top-level fields, excluding properties, in declaration order.
func (c Context) Fields() [][2]string {
	all := [][2]string{
		{FieldAppName, c.AppName},
		{FieldEnvironment, c.Environment},
		{FieldUserID, c.UserID},
		{FieldSessionID, c.SessionID},
		{FieldRemoteAddress, c.RemoteAddress},
		{FieldCurrentTime, c.CurrentTime},
	}
	ret := make([][2]string, 0, len(all))
	for _, f := range all {
		if f[1] != "" {
			ret = append(ret, f)
		}
	}
	return ret
}

// SortedPropertyKeys returns the property names in byte order.
func (c Context) SortedPropertyKeys() []string {
	keys := make([]string, 0, len(c.Properties))
	for k := range c.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithField returns a copy of the context with one field set. Defined fields are set directly and
// any other name becomes a custom property. Static fields are not handled here.
func (c Context) WithField(name, value string) Context {
	ret := c.Copy()
	switch name {
	case FieldUserID:
		ret.UserID = value
	case FieldSessionID:
		ret.SessionID = value
	case FieldRemoteAddress:
		ret.RemoteAddress = value
	case FieldCurrentTime:
		ret.CurrentTime = value
	default:
		if ret.Properties == nil {
			ret.Properties = make(map[string]string)
		}
		ret.Properties[name] = value
	}
	return ret
}

// WithoutField returns a copy of the context with one field cleared or one property removed.
func (c Context) WithoutField(name string) Context {
	ret := c.Copy()
	switch name {
	case FieldUserID:
		ret.UserID = ""
	case FieldSessionID:
		ret.SessionID = ""
	case FieldRemoteAddress:
		ret.RemoteAddress = ""
	case FieldCurrentTime:
		ret.CurrentTime = ""
	default:
		delete(ret.Properties, name)
		if len(ret.Properties) == 0 {
			ret.Properties = nil
		}
	}
	return ret
}
