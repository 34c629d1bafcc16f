package palette

import (
	"errors"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	csv := "id,name,r,g,b\n310,Black,0,0,0\nB5200,Snow White,255,255,255\n666,Bright Red,227,29,66\n"

	pal, err := Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if pal.Len() != 3 {
		t.Errorf("Len() = %d, want 3", pal.Len())
	}

	entry, ok := pal.Lookup("B5200")
	if !ok {
		t.Fatal("Lookup(B5200) not found")
	}
	if entry.Name != "Snow White" {
		t.Errorf("Name = %q, want %q", entry.Name, "Snow White")
	}
	if entry.RGB != [3]uint8{255, 255, 255} {
		t.Errorf("RGB = %v, want [255 255 255]", entry.RGB)
	}

	// File order is preserved for tie-breaking.
	if got := pal.At(0).ID; got != "310" {
		t.Errorf("At(0).ID = %q, want %q", got, "310")
	}
}

func TestLoadWithoutHeader(t *testing.T) {
	csv := "310,Black,0,0,0\n666,Bright Red,227,29,66\n"

	pal, err := Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if pal.Len() != 2 {
		t.Errorf("Len() = %d, want 2", pal.Len())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "component out of range",
			csv:  "id,name,r,g,b\n310,Black,0,0,300\n",
		},
		{
			name: "component negative",
			csv:  "id,name,r,g,b\n310,Black,-1,0,0\n",
		},
		{
			name: "non-integer component past header",
			csv:  "id,name,r,g,b\n310,Black,0,0,0\n666,Bright Red,x,29,66\n",
		},
		{
			name: "duplicate id",
			csv:  "id,name,r,g,b\n310,Black,0,0,0\n310,Also Black,1,1,1\n",
		},
		{
			name: "wrong field count",
			csv:  "310,Black,0,0\n",
		},
		{
			name: "empty file",
			csv:  "",
		},
		{
			name: "header only",
			csv:  "id,name,r,g,b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.csv))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestNewDuplicateID(t *testing.T) {
	_, err := New([]Entry{
		{ID: "310", Name: "Black"},
		{ID: "310", Name: "Black Again"},
	})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("New() error = %v, want ErrMalformed", err)
	}
}

func TestDefault(t *testing.T) {
	pal := Default()
	if pal.Len() < 200 {
		t.Errorf("Default().Len() = %d, want at least 200 entries", pal.Len())
	}

	// Spot-check well-known floss numbers.
	for _, id := range []string{"310", "B5200", "Ecru", "666", "3866"} {
		if _, ok := pal.Lookup(id); !ok {
			t.Errorf("Default() missing id %q", id)
		}
	}

	// Same instance on repeated calls.
	if Default() != pal {
		t.Error("Default() returned a different instance on second call")
	}
}
