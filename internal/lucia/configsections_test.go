package lucia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestDiffValues(t *testing.T) {
	tests := []struct {
		name     string
		original map[string]string
		edited   map[string]string
		expected map[string]string
	}{
		{
			name:     "no changes",
			original: map[string]string{"host": "localhost", "port": "8080"},
			edited:   map[string]string{"host": "localhost", "port": "8080"},
			expected: map[string]string{},
		},
		{
			name:     "changed value",
			original: map[string]string{"host": "localhost"},
			edited:   map[string]string{"host": "lucia.local"},
			expected: map[string]string{"host": "lucia.local"},
		},
		{
			name:     "new key",
			original: map[string]string{"host": "localhost"},
			edited:   map[string]string{"host": "localhost", "port": "9090"},
			expected: map[string]string{"port": "9090"},
		},
		{
			name:     "removed key maps to empty string",
			original: map[string]string{"host": "localhost", "port": "8080"},
			edited:   map[string]string{"host": "localhost"},
			expected: map[string]string{"port": ""},
		},
		{
			name:     "untouched masked secret is dropped",
			original: map[string]string{"apiKey": MaskedValue, "host": "localhost"},
			edited:   map[string]string{"apiKey": MaskedValue, "host": "localhost"},
			expected: map[string]string{},
		},
		{
			name:     "replaced secret is included",
			original: map[string]string{"apiKey": MaskedValue},
			edited:   map[string]string{"apiKey": "sk-new-value"},
			expected: map[string]string{"apiKey": "sk-new-value"},
		},
		{
			name:     "masked value in a new key is still dropped",
			original: map[string]string{},
			edited:   map[string]string{"apiKey": MaskedValue},
			expected: map[string]string{},
		},
		{
			name:     "secret cleared explicitly",
			original: map[string]string{"apiKey": MaskedValue},
			edited:   map[string]string{"apiKey": ""},
			expected: map[string]string{"apiKey": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffValues(tt.original, tt.edited)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("DiffValues() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

// The mask sentinel must never travel back to the backend, no matter
// how the edited map is shaped.
func TestDiffValuesNeverEmitsMask(t *testing.T) {
	original := map[string]string{
		"0:apiKey": MaskedValue,
		"0:name":   "sensor-a",
		"1:apiKey": MaskedValue,
	}
	edited := map[string]string{
		"0:apiKey": MaskedValue,
		"0:name":   "sensor-b",
		"1:apiKey": "replaced",
		"2:apiKey": MaskedValue,
	}

	changes := DiffValues(original, edited)
	for key, value := range changes {
		if value == MaskedValue {
			t.Errorf("Change set contains mask sentinel at %q", key)
		}
	}
	if changes["0:name"] != "sensor-b" {
		t.Errorf("Expected 0:name change, got %v", changes)
	}
	if changes["1:apiKey"] != "replaced" {
		t.Errorf("Expected 1:apiKey change, got %v", changes)
	}
}

func TestParseArrayKey(t *testing.T) {
	tests := []struct {
		key      string
		index    int
		property string
		ok       bool
	}{
		{"0:host", 0, "host", true},
		{"12:apiKey", 12, "apiKey", true},
		{"host", 0, "", false},
		{":host", 0, "", false},
		{"0:", 0, "", false},
		{"-1:host", 0, "", false},
		{"abc:host", 0, "", false},
	}

	for _, tt := range tests {
		index, property, ok := ParseArrayKey(tt.key)
		if ok != tt.ok || index != tt.index || property != tt.property {
			t.Errorf("ParseArrayKey(%q) = (%d, %q, %v), expected (%d, %q, %v)",
				tt.key, index, property, ok, tt.index, tt.property, tt.ok)
		}
	}
}

func TestGroupArrayValues(t *testing.T) {
	values := map[string]string{
		"2:name":    "third",
		"0:name":    "first",
		"0:enabled": "true",
		"1:name":    "second",
		"stray":     "ignored",
	}

	items := GroupArrayValues(values)
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if items[0]["name"] != "first" || items[0]["enabled"] != "true" {
		t.Errorf("Item 0 wrong: %v", items[0])
	}
	if items[1]["name"] != "second" {
		t.Errorf("Item 1 wrong: %v", items[1])
	}
	if items[2]["name"] != "third" {
		t.Errorf("Item 2 wrong: %v", items[2])
	}
}

func TestGetConfigValuesCleartextFlag(t *testing.T) {
	var cleartextSeen string
	backend := newFakeBackend("", func(w http.ResponseWriter, r *http.Request) {
		cleartextSeen = r.URL.Query().Get("cleartext")
		json.NewEncoder(w).Encode(map[string]string{"apiKey": MaskedValue})
	})
	server := httptest.NewServer(backend)
	defer server.Close()

	client := New(server.URL, "")
	ctx := context.Background()

	if _, err := client.GetConfigValues(ctx, "providers", false); err != nil {
		t.Fatalf("GetConfigValues failed: %v", err)
	}
	if cleartextSeen != "" {
		t.Errorf("Expected no cleartext parameter by default, got %q", cleartextSeen)
	}

	if _, err := client.GetConfigValues(ctx, "providers", true); err != nil {
		t.Fatalf("GetConfigValues cleartext failed: %v", err)
	}
	if cleartextSeen != "true" {
		t.Errorf("Expected cleartext=true, got %q", cleartextSeen)
	}
}
