package dictionary

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is one image record: its id and the URL it was found at
type Entry struct {
	ID  string
	URL string
}

// Dictionary is an id→URL mapping that remembers insertion order. It
// marshals to a flat JSON object with keys in that order.
type Dictionary struct {
	m *orderedmap.OrderedMap[string, string]
}

// New creates an empty dictionary
func New() *Dictionary {
	return &Dictionary{m: orderedmap.New[string, string]()}
}

// FromEntries builds a dictionary from entries, later ids overwriting
// earlier ones in place
func FromEntries(entries ...Entry) *Dictionary {
	d := New()
	for _, e := range entries {
		d.Set(e.ID, e.URL)
	}
	return d
}

// Set adds id or replaces its URL, keeping its original position
func (d *Dictionary) Set(id, url string) {
	d.m.Set(id, url)
}

// Get returns the URL stored for id
func (d *Dictionary) Get(id string) (string, bool) {
	return d.m.Get(id)
}

// Len returns the number of records. A nil dictionary is empty.
func (d *Dictionary) Len() int {
	if d == nil || d.m == nil {
		return 0
	}
	return d.m.Len()
}

// Keys returns the ids in stored order
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, d.Len())
	for _, e := range d.Entries() {
		keys = append(keys, e.ID)
	}
	return keys
}

// Entries returns the records in stored order
func (d *Dictionary) Entries() []Entry {
	if d.Len() == 0 {
		return nil
	}
	entries := make([]Entry, 0, d.m.Len())
	for pair := d.m.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, Entry{ID: pair.Key, URL: pair.Value})
	}
	return entries
}

// Merge copies every record of other into d. Existing ids take other's URL
// in place; new ids are appended.
func (d *Dictionary) Merge(other *Dictionary) {
	for _, e := range other.Entries() {
		d.Set(e.ID, e.URL)
	}
}

// MarshalJSON writes the records as one JSON object in stored order. URLs
// are written as is, without HTML escaping of '&'.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Encode terminates each value with a newline
	writeString := func(v string) error {
		if err := enc.Encode(v); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1)
		return nil
	}

	buf.WriteByte('{')
	for i, e := range d.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(e.ID); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(e.URL); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (d *Dictionary) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, string]()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	d.m = m
	return nil
}
