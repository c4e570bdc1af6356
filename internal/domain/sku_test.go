package domain

import (
	"errors"
	"testing"
)

func TestFormatSKU(t *testing.T) {
	tests := []struct {
		rid, iid int
		want     string
	}{
		{1, 3, "R001-I003"},
		{12, 345, "R012-I345"},
		{1000, 1, "R1000-I001"},
	}
	for _, tc := range tests {
		if got := FormatSKU(tc.rid, tc.iid); got != tc.want {
			t.Errorf("FormatSKU(%d, %d): got %s, want %s", tc.rid, tc.iid, got, tc.want)
		}
	}
}

func TestParseSKU(t *testing.T) {
	rid, iid, err := ParseSKU("R001-I003")
	if err != nil {
		t.Fatal(err)
	}
	if rid != 1 || iid != 3 {
		t.Errorf("got (%d, %d), want (1, 3)", rid, iid)
	}

	// whitespace tolerated
	if _, _, err := ParseSKU("  R002-I010 "); err != nil {
		t.Errorf("trimmed SKU should parse: %v", err)
	}
}

func TestParseSKUMalformed(t *testing.T) {
	for _, sku := range []string{"", "R001", "I003-R001", "R001-X003", "Rx-I1", "R001-I00x", "R001-I003-extra"} {
		_, _, err := ParseSKU(sku)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("%q: expected ValidationError, got %v", sku, err)
		}
	}
}

func TestParseSKURoundTrip(t *testing.T) {
	sku := FormatSKU(7, 42)
	rid, iid, err := ParseSKU(sku)
	if err != nil {
		t.Fatal(err)
	}
	if rid != 7 || iid != 42 {
		t.Errorf("round trip: got (%d, %d)", rid, iid)
	}
}
