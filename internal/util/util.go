package util

import (
	"encoding/json"
	"fmt"
	"net/url"
)

type errorJSON struct {
	Message string `json:"message"`
}

// ErrorJSONMsg returns a JSON error body of the form {"message":"..."}.
func ErrorJSONMsg(msg string) []byte {
	data, _ := json.Marshal(errorJSON{Message: msg})
	return data
}

// ErrorJSONMsgf is ErrorJSONMsg with printf-style formatting.
func ErrorJSONMsgf(format string, args ...interface{}) []byte {
	return ErrorJSONMsg(fmt.Sprintf(format, args...))
}

// RedactURL replaces the password in a URL, if any, with "xxxxx". Strings that do not parse as URLs are
// returned unchanged.
func RedactURL(inputURL string) string {
	parsed, err := url.Parse(inputURL)
	if err != nil || parsed.User == nil {
		return inputURL
	}
	if _, hasPassword := parsed.User.Password(); !hasPassword {
		return inputURL
	}
	return parsed.Redacted()
}
