package model

import (
	"encoding/json"
	"fmt"
)

// HTTPError reports a response from the proxy whose status was not acceptable. It serializes to JSON as
// {"type":"HttpError","code":<status>}.
type HTTPError struct {
	Code int
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// MarshalJSON implements json.Marshaler.
func (e HTTPError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Code int    `json:"code"`
	}{"HttpError", e.Code})
}
