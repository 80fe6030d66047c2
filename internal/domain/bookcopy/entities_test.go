package bookcopy

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"available", "borrowed", "lost", "damaged"} {
		got, err := ParseStatus(s)
		if err != nil || string(got) != s || !got.IsValid() {
			t.Fatalf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("reserved"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestOpAllows(t *testing.T) {
	tests := []struct {
		op   Op
		from Status
		want bool
	}{
		{OpReserve, StatusAvailable, true},
		{OpReserve, StatusBorrowed, false},
		{OpReserve, StatusLost, false},
		{OpRelease, StatusBorrowed, true},
		{OpRelease, StatusAvailable, false},
		{OpMarkLost, StatusBorrowed, true},
		{OpMarkLost, StatusDamaged, false},
		{OpMarkDamaged, StatusAvailable, true},
		{OpReset, StatusLost, true},
		{OpReset, StatusDamaged, true},
		{OpReset, StatusBorrowed, false},
	}
	for _, tt := range tests {
		if got := tt.op.Allows(tt.from); got != tt.want {
			t.Fatalf("%s from %s = %v, want %v", tt.op.Name, tt.from, got, tt.want)
		}
	}
}

func TestStatusScan(t *testing.T) {
	var s Status
	if err := s.Scan([]byte("damaged")); err != nil || s != StatusDamaged {
		t.Fatalf("Scan = %q, %v", s, err)
	}
	if err := s.Scan("reserved"); err == nil {
		t.Fatal("unknown column value must fail the scan")
	}
}
