package discovery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Count is an engagement counter that the feed API reports either as a
// number or as a display string such as "1.2万", "3.5k" or "1,024".
type Count int

// UnmarshalJSON accepts numbers, numeric strings and abbreviated display strings.
func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Count(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count must be a number or string: %w", err)
	}
	v, err := ParseCount(s)
	if err != nil {
		return err
	}
	*c = Count(v)
	return nil
}

// ParseCount converts a display counter to an integer. Empty input is zero.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	if s == "" {
		return 0, nil
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "万"):
		multiplier = 10000
		s = strings.TrimSuffix(s, "万")
	case strings.HasSuffix(s, "w"), strings.HasSuffix(s, "W"):
		multiplier = 10000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		multiplier = 1000
		s = s[:len(s)-1]
	}
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", s, err)
	}
	return int(v*multiplier + 0.5), nil
}
