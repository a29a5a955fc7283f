package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the layout used to serialize cached_at. It is local time
// without an offset, sortable as text.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// acceptedLayouts are tried in order when reading cached_at back.
//
//nolint:gochecknoglobals // Read-only lookup table.
var acceptedLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

var (
	errMissingTimestamp = errors.New("entry has no cached_at")
	errMissingData      = errors.New("entry has no data")
)

// Entry is the durable form of one cached value.
type Entry struct {
	// CachedAt is when the entry was written, in local time.
	CachedAt time.Time

	// Data is the payload exactly as it was written.
	Data json.RawMessage
}

type entryJSON struct {
	CachedAt string          `json:"cached_at"`
	Data     json.RawMessage `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		CachedAt: e.CachedAt.Local().Format(TimestampLayout),
		Data:     e.Data,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Both fields are required.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}

	var aux entryJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CachedAt == "" {
		return errMissingTimestamp
	}
	if len(aux.Data) == 0 {
		return errMissingData
	}

	cachedAt, err := parseTimestamp(aux.CachedAt)
	if err != nil {
		return err
	}

	e.CachedAt = cachedAt
	e.Data = aux.Data
	return nil
}

// Age returns how old the entry is at now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// IsFresh reports whether the entry is younger than freshness at now.
// The comparison is strict: an entry exactly freshness old is stale.
// CachedAt has microsecond resolution, so age is measured from the write
// time truncated to the microsecond.
func (e *Entry) IsFresh(now time.Time, freshness time.Duration) bool {
	return e.Age(now) < freshness
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid cached_at %q", s)
}
