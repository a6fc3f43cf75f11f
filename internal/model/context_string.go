package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ContextString returns the canonical serialization of a context: a JSON array holding the sorted
// [key, value] pairs of the top-level fields and the sorted [key, value] pairs of the properties.
// Keys are ordered with locale-aware collation.
func ContextString(c Context) string {
	fields := c.Fields()
	props := make([][2]string, 0, len(c.Properties))
	for k, v := range c.Properties {
		props = append(props, [2]string{k, v})
	}
	sortEntries(fields)
	sortEntries(props)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode([2][][2]string{fields, props}) // can't fail for string data
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// ComputeContextHash returns the hex-encoded SHA-256 digest of ContextString(c). It is used as the
// key of the persisted refresh record.
func ComputeContextHash(c Context) string {
	sum := sha256.Sum256([]byte(ContextString(c)))
	return hex.EncodeToString(sum[:])
}

func sortEntries(entries [][2]string) {
	coll := collate.New(language.Und)
	sort.SliceStable(entries, func(i, j int) bool {
		if cmp := coll.CompareString(entries[i][0], entries[j][0]); cmp != 0 {
			return cmp < 0
		}
		return entries[i][0] < entries[j][0]
	})
}
