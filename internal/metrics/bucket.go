package metrics

import "time"

// InstanceID is sent as the instanceId of every payload.
const InstanceID = "browser"

// ToggleCount holds the evaluation counts of one toggle within a bucket.
type ToggleCount struct {
	Yes      int            `json:"yes"`
	No       int            `json:"no"`
	Variants map[string]int `json:"variants"`
}

// Bucket is a time window of evaluation counts. Stop is nil while the bucket is active.
type Bucket struct {
	Start   time.Time               `json:"start"`
	Stop    *time.Time              `json:"stop"`
	Toggles map[string]*ToggleCount `json:"toggles"`
}

// Payload is the body of a metrics request.
type Payload struct {
	Bucket     Bucket `json:"bucket"`
	AppName    string `json:"appName"`
	InstanceID string `json:"instanceId"`
}

func newBucket(now time.Time) Bucket {
	return Bucket{Start: now, Toggles: make(map[string]*ToggleCount)}
}

// IsEmpty returns true if nothing was counted in the bucket.
func (b Bucket) IsEmpty() bool {
	return len(b.Toggles) == 0
}

func (b Bucket) toggle(name string) *ToggleCount {
	tc := b.Toggles[name]
	if tc == nil {
		tc = &ToggleCount{Variants: make(map[string]int)}
		b.Toggles[name] = tc
	}
	return tc
}
