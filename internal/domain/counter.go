package domain

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/spf13/cast"
)

// UnknownLabel replaces empty counter keys.
const UnknownLabel = "unknown"

type CounterEntry struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Counter maps labels to counts and remembers the order in which labels were
// first seen. The order survives JSON round trips so that ties in Top are
// broken the same way before and after persistence.
type Counter struct {
	keys   []string
	counts map[string]int64
}

func NewCounter(entries ...CounterEntry) Counter {
	var c Counter
	for _, e := range entries {
		c.Inc(e.Label, e.Value)
	}
	return c
}

func (c *Counter) Inc(key string, n int64) {
	if key == "" {
		key = UnknownLabel
	}
	if c.counts == nil {
		c.counts = make(map[string]int64)
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

func (c Counter) Get(key string) int64 {
	return c.counts[key]
}

func (c Counter) Len() int {
	return len(c.keys)
}

// Entries returns every label in first-seen order.
func (c Counter) Entries() []CounterEntry {
	entries := make([]CounterEntry, 0, len(c.keys))
	for _, k := range c.keys {
		entries = append(entries, CounterEntry{Label: k, Value: c.counts[k]})
	}
	return entries
}

// Top returns at most n entries sorted by descending value. Equal values keep
// first-seen order. n <= 0 returns every entry.
func (c Counter) Top(n int) []CounterEntry {
	entries := c.Entries()
	slices.SortStableFunc(entries, func(a, b CounterEntry) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func (c Counter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(c.counts[k], 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object in document order. Null or any non-object
// legacy value decodes to an empty counter; non-numeric values count as 0.
func (c *Counter) UnmarshalJSON(data []byte) error {
	c.keys = nil
	c.counts = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		c.Inc(key, toCount(raw))
	}

	_, err = dec.Token()
	return err
}

func toCount(v any) int64 {
	if num, ok := v.(json.Number); ok {
		if n, err := num.Int64(); err == nil {
			return n
		}
		f, _ := num.Float64()
		return int64(f)
	}
	return cast.ToInt64(v)
}
