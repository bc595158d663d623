package progress

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/roach88/tally/internal/ir"
)

// MarshalJSON writes the snapshot sections in wire order. Settings and
// component progress hold IR values and are written through ir rather
// than reflection; the plain sections go through the JSON encoder.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	sections := []struct {
		key     string
		marshal func() ([]byte, error)
	}{
		{"metadata", func() ([]byte, error) { return json.Marshal(s.Metadata) }},
		{"overall_progress", func() ([]byte, error) { return json.Marshal(s.OverallProgress) }},
		{"settings", s.Settings.MarshalJSON},
		{"navigation_state", func() ([]byte, error) { return json.Marshal(s.NavigationState) }},
		{"component_progress", s.ComponentProgress.MarshalJSON},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := sec.marshal()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sec.key, err)
		}
		buf.WriteString(strconv.Quote(sec.key))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes settings with sorted field names. A nil map is {}.
func (st Settings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range slices.Sorted(maps.Keys(st)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := marshalValue(st[name].Value)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteString(`:{"value":`)
		buf.Write(value)
		buf.WriteString(`,"last_changed":`)
		buf.WriteString(strconv.FormatInt(st[name].LastChanged, 10))
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes component records keyed by decimal id. Keys are
// ordered as strings, the same order the standard encoder uses for
// integer map keys. A nil map is {}.
func (cp ComponentProgress) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(cp))
	ids := make(map[string]int64, len(cp))
	for id := range cp {
		k := strconv.FormatInt(id, 10)
		keys = append(keys, k)
		ids[k] = id
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		rec := cp[ids[k]]
		if rec == nil {
			rec = ir.IRObject{}
		}
		data, err := ir.MarshalIRValue(rec)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", k, err)
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v ir.IRValue) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return ir.MarshalIRValue(v)
}
