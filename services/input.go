package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StringList accepts either a JSON array of strings or one comma separated
// string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}.Normalize()
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or an array of strings")
	}
	*l = StringList(many).Normalize()
	return nil
}

// Normalize splits comma separated entries, trims them and drops blanks.
func (l StringList) Normalize() StringList {
	out := StringList{}
	for _, item := range l {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

const localTimestampLayout = "2006-01-02T15:04"

// parseTimestamp accepts RFC 3339 or a zone-less "YYYY-MM-DDTHH:mm" read in loc.
func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{localTimestampLayout, "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
