package jsonptr

import (
	"errors"
	"testing"

	"github.com/jhytabest/plashboard/internal/models"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"title":   "X",
		"summary": "old",
		"ui": map[string]any{
			"timezone": "UTC",
			"a/b":      "slash",
			"t~e":      "tilde",
		},
		"sections": []any{
			map[string]any{"id": "s1", "cards": []any{map[string]any{"label": "c1"}}},
		},
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		pointer string
		want    any
		wantErr error
	}{
		{name: "top-level key", pointer: "/summary", want: "old"},
		{name: "nested key", pointer: "/ui/timezone", want: "UTC"},
		{name: "array index", pointer: "/sections/0/id", want: "s1"},
		{name: "escaped slash", pointer: "/ui/a~1b", want: "slash"},
		{name: "escaped tilde", pointer: "/ui/t~0e", want: "tilde"},
		{name: "missing key", pointer: "/missing", wantErr: models.ErrPointerNotFound},
		{name: "missing nested key", pointer: "/sections/0/cards/0/unknown", wantErr: models.ErrPointerNotFound},
		{name: "index out of range", pointer: "/sections/5", wantErr: models.ErrPointerNotFound},
		{name: "non-numeric against array", pointer: "/sections/first", wantErr: models.ErrPointerInvalid},
		{name: "descend into scalar", pointer: "/summary/deep", wantErr: models.ErrPointerInvalid},
		{name: "negative index", pointer: "/sections/-1", wantErr: models.ErrPointerInvalid},
		{name: "no leading slash", pointer: "summary", wantErr: models.ErrPointerInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(sampleDoc(), tt.pointer)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Read(%q) error = %v, want %v", tt.pointer, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read(%q) unexpected error: %v", tt.pointer, err)
			}
			if got != tt.want {
				t.Fatalf("Read(%q) = %v, want %v", tt.pointer, got, tt.want)
			}
		})
	}
}

func TestReadRoot(t *testing.T) {
	doc := sampleDoc()
	got, err := Read(doc, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(map[string]any); !ok {
		t.Fatalf("empty pointer should return the document, got %T", got)
	}
}

func TestWrite(t *testing.T) {
	t.Run("replaces existing key", func(t *testing.T) {
		doc := sampleDoc()
		if err := Write(doc, "/summary", "new"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc["summary"] != "new" {
			t.Fatalf("summary = %v, want new", doc["summary"])
		}
	})

	t.Run("replaces array element", func(t *testing.T) {
		doc := sampleDoc()
		if err := Write(doc, "/sections/0", "replaced"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc["sections"].([]any)[0] != "replaced" {
			t.Fatal("array element not replaced")
		}
	})

	t.Run("never creates keys", func(t *testing.T) {
		doc := sampleDoc()
		err := Write(doc, "/brand_new", "v")
		if !errors.Is(err, models.ErrPointerNotFound) {
			t.Fatalf("error = %v, want ErrPointerNotFound", err)
		}
		if _, exists := doc["brand_new"]; exists {
			t.Fatal("write created a key")
		}
	})

	t.Run("never extends arrays", func(t *testing.T) {
		doc := sampleDoc()
		err := Write(doc, "/sections/1", "v")
		if !errors.Is(err, models.ErrPointerNotFound) {
			t.Fatalf("error = %v, want ErrPointerNotFound", err)
		}
	})

	t.Run("rejects root writes", func(t *testing.T) {
		doc := sampleDoc()
		if err := Write(doc, "", "v"); !errors.Is(err, models.ErrPointerInvalid) {
			t.Fatalf("error = %v, want ErrPointerInvalid", err)
		}
	})
}
