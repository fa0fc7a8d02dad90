package schema

import (
	"reflect"
	"testing"
)

func TestTagsRoundTrip(t *testing.T) {
	cases := [][]string{
		{},
		{"health"},
		{"health", "work", "日本語"},
		{"with spaces", `with "quotes"`},
	}

	for _, tags := range cases {
		encoded, err := EncodeTags(tags)
		if err != nil {
			t.Fatalf("EncodeTags(%v): %v", tags, err)
		}
		decoded, err := DecodeTags(encoded)
		if err != nil {
			t.Fatalf("DecodeTags(%q): %v", encoded, err)
		}
		if !reflect.DeepEqual(decoded, tags) {
			t.Errorf("round trip of %v = %v", tags, decoded)
		}
	}
}

func TestEncodeTagsNil(t *testing.T) {
	encoded, err := EncodeTags(nil)
	if err != nil {
		t.Fatalf("EncodeTags(nil): %v", err)
	}
	if encoded != "[]" {
		t.Errorf("EncodeTags(nil) = %q, want %q", encoded, "[]")
	}
}

func TestDecodeTagsDefensive(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil value", nil, []string{}},
		{"empty string", "", []string{}},
		{"json null", "null", []string{}},
		{"json text", `["a","b"]`, []string{"a", "b"}},
		{"byte slice", []byte(`["a"]`), []string{"a"}},
		{"native slice", []string{"x", "y"}, []string{"x", "y"}},
		{"nil native slice", []string(nil), []string{}},
		{"generic slice", []any{"x", "y"}, []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTags(tt.in)
			if err != nil {
				t.Fatalf("DecodeTags(%v): %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeTagsRejectsGarbage(t *testing.T) {
	if _, err := DecodeTags("not json"); err == nil {
		t.Error("expected error for malformed JSON text")
	}
	if _, err := DecodeTags(42); err == nil {
		t.Error("expected error for unsupported type")
	}
	if _, err := DecodeTags([]any{"ok", 7}); err == nil {
		t.Error("expected error for non-string element")
	}
}
