package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// portalLayouts are the timestamp formats the backend has been observed to
// emit. The primary one is Python's str(datetime) with microseconds.
var portalLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// PortalTime is a time.Time that unmarshals from any of the backend's
// timestamp formats and marshals back to the primary one.
type PortalTime struct {
	time.Time
}

func NewPortalTime(t time.Time) PortalTime {
	return PortalTime{Time: t}
}

func (t PortalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(portalLayouts[0]))
}

func (t *PortalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range portalLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", strings.TrimSpace(s))
}
