package model

import (
	"encoding/json"
	"testing"
)

func TestStockStatus(t *testing.T) {
	tests := []struct {
		quantity int
		minLevel int
		expected string
	}{
		{10, 10, StockStatusLowStock},
		{11, 10, StockStatusInStock},
		{0, 0, StockStatusLowStock},
		{1, 0, StockStatusInStock},
		{3, 10, StockStatusLowStock},
	}

	for _, tt := range tests {
		got := StockStatus(tt.quantity, tt.minLevel)
		if got != tt.expected {
			t.Errorf("StockStatus(%d, %d) = %q, want %q", tt.quantity, tt.minLevel, got, tt.expected)
		}
	}
}

func TestMethodDuration(t *testing.T) {
	methods := DefaultMethods()
	tests := []struct {
		name     string
		expected int
	}{
		{"Steam Sterilization", 45},
		{"Chemical Sterilization", 75},
		{"plasma sterilization", 60},
		{"Dry Heat", DefaultDuration},
		{"", DefaultDuration},
	}

	for _, tt := range tests {
		got := MethodDuration(methods, tt.name)
		if got != tt.expected {
			t.Errorf("MethodDuration(%q) = %d, want %d", tt.name, got, tt.expected)
		}
	}
}

func TestCountUnmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected Count
	}{
		{`5`, 5},
		{`"7"`, 7},
		{`" 12 "`, 12},
		{`""`, 0},
		{`null`, 0},
		{`"abc"`, 0},
		{`2.0`, 2},
		{`{}`, 0},
	}

	for _, tt := range tests {
		var c Count
		if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.input, err)
			continue
		}
		if c != tt.expected {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, c, tt.expected)
		}
	}
}

func TestItemsUnmarshal(t *testing.T) {
	var r Request
	if err := json.Unmarshal([]byte(`{"id":"KIT001","items":[{"name":"Scalpel","quantity":2}],"quantity":"2"}`), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Items.Display() != "Scalpel (2)" {
		t.Errorf("Display() = %q, want %q", r.Items.Display(), "Scalpel (2)")
	}
	if r.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", r.Quantity)
	}
}

func TestItemsDisplay(t *testing.T) {
	tests := []struct {
		items    Items
		expected string
		total    int
	}{
		{`[{"name":"Scalpel","quantity":2},{"name":"Forceps","quantity":"3"}]`, "Scalpel (2), Forceps (3)", 5},
		{"Scalpel (2), Forceps (1)", "Scalpel (2), Forceps (1)", 0},
		{"[not json", "[not json", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		if got := tt.items.Display(); got != tt.expected {
			t.Errorf("Items(%q).Display() = %q, want %q", tt.items, got, tt.expected)
		}
		if got := tt.items.Total(); got != tt.total {
			t.Errorf("Items(%q).Total() = %d, want %d", tt.items, got, tt.total)
		}
	}
}

func TestEncodeLines(t *testing.T) {
	items := EncodeLines([]Line{{Name: "Gauze", Quantity: 4}})
	if items != `[{"name":"Gauze","quantity":4}]` {
		t.Errorf("EncodeLines = %s", items)
	}
	if EncodeLines(nil) != "[]" {
		t.Errorf("EncodeLines(nil) = %s, want []", EncodeLines(nil))
	}
}

func TestIDPrefix(t *testing.T) {
	for _, c := range Collections() {
		if !KnownCollection(c) {
			t.Errorf("KnownCollection(%q) = false", c)
		}
		if IDPrefix(c) == "" {
			t.Errorf("IDPrefix(%q) is empty", c)
		}
	}
	if KnownCollection("users") {
		t.Error("KnownCollection(users) = true")
	}
}
