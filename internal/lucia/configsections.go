package lucia

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// MaskedValue is the sentinel the backend substitutes for sensitive
// values unless cleartext access is requested. An edited value equal to
// the sentinel means "unchanged" and must never be written back.
const MaskedValue = "********"

// ConfigSection describes one editable backend configuration section.
// Array sections hold repeated groups of the same properties; their
// values arrive flattened as "{index}:{property}" keys.
type ConfigSection struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Description string           `json:"description,omitempty"`
	IsArray     bool             `json:"isArray,omitempty"`
	Properties  []ConfigProperty `json:"properties"`
}

// ConfigProperty is the schema of one value within a section.
type ConfigProperty struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName,omitempty"`
	Type        string   `json:"type"`
	Sensitive   bool     `json:"sensitive,omitempty"`
	Default     string   `json:"default,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

// GetConfigSections fetches the configuration schema.
func (c *Client) GetConfigSections(ctx context.Context) ([]ConfigSection, error) {
	var out []ConfigSection
	if err := c.get(ctx, "/config/sections", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []ConfigSection{}
	}
	return out, nil
}

// GetConfigValues fetches a section's current values as a flat map.
// Sensitive values come back as MaskedValue unless cleartext is set.
func (c *Client) GetConfigValues(ctx context.Context, section string, cleartext bool) (map[string]string, error) {
	var q url.Values
	if cleartext {
		q = url.Values{}
		q.Set("cleartext", "true")
	}

	out := make(map[string]string)
	if err := c.get(ctx, "/config/sections/"+section+"/values", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateConfigValues writes changed values for a section. Callers must
// send only actual changes; DiffValues produces such a payload.
func (c *Client) UpdateConfigValues(ctx context.Context, section string, changes map[string]string) error {
	return c.put(ctx, "/config/sections/"+section+"/values", changes, nil)
}

// DiffValues computes the update payload from the values as loaded and
// the values as edited. A key is included when its value changed or it
// is new; an edited value still equal to the mask sentinel is an
// untouched secret and is dropped. Keys removed from edited map to the
// empty string, which the backend treats as unset.
func DiffValues(original, edited map[string]string) map[string]string {
	changes := make(map[string]string)

	for key, editedValue := range edited {
		if editedValue == MaskedValue {
			continue
		}
		if originalValue, exists := original[key]; !exists || originalValue != editedValue {
			changes[key] = editedValue
		}
	}

	for key := range original {
		if _, still := edited[key]; !still {
			changes[key] = ""
		}
	}

	return changes
}

// ParseArrayKey splits a flattened array key into its index and
// property name. Returns ok=false for keys that are not array-shaped.
func ParseArrayKey(key string) (index int, property string, ok bool) {
	idx, prop, found := strings.Cut(key, ":")
	if !found || idx == "" || prop == "" {
		return 0, "", false
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return 0, "", false
	}
	return n, prop, true
}

// GroupArrayValues reassembles a flattened array section into ordered
// per-item maps for display. Keys that do not parse as array keys are
// ignored.
func GroupArrayValues(values map[string]string) []map[string]string {
	byIndex := make(map[int]map[string]string)
	for key, value := range values {
		idx, prop, ok := ParseArrayKey(key)
		if !ok {
			continue
		}
		if byIndex[idx] == nil {
			byIndex[idx] = make(map[string]string)
		}
		byIndex[idx][prop] = value
	}

	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	items := make([]map[string]string, 0, len(indexes))
	for _, idx := range indexes {
		items = append(items, byIndex[idx])
	}
	return items
}
