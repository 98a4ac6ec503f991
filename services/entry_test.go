package services

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso", "2024-03-15", want},
		{"day first", "15/03/2024", want},
		{"short day first", "15/3/2024", want},
		{"with time", "2024-03-15 10:30:00", want},
		{"rfc3339", "2024-03-15T23:59:00Z", want},
		{"excel serial", "45366", want},
		{"two digit year", "15-03-24", want},
		{"two digit year day first", "05-04-24", time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)},
		{"blank", "  ", time.Time{}},
		{"nat", "NaT", time.Time{}},
		{"garbage", "next tuesday", time.Time{}},
		{"negative serial", "-5", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.in); !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("expected empty string for missing date, got %q", got)
	}
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2024-01-02" {
		t.Errorf("FormatDate = %q, want 2024-01-02", got)
	}
	if got := ParseDate(FormatDate(d)); !got.Equal(d) {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}

func TestCoercion(t *testing.T) {
	floats := map[string]float64{
		"1,234.50": 1234.5,
		"  12 ":    12,
		"35.5%":    35.5,
		"abc":      0,
		"":         0,
		"NaN":      0,
		"-3":       -3,
	}
	for in, want := range floats {
		if got := CoerceFloat(in); got != want {
			t.Errorf("CoerceFloat(%q) = %v, want %v", in, got, want)
		}
	}

	if got := CoercePrice("-3"); got != 0 {
		t.Errorf("CoercePrice(-3) = %v, want 0", got)
	}
	if got := CoerceQty("7.9"); got != 7 {
		t.Errorf("CoerceQty(7.9) = %d, want 7", got)
	}
	if got := CoerceQty("x"); got != 0 {
		t.Errorf("CoerceQty(x) = %d, want 0", got)
	}
}

func TestEntryFromCells(t *testing.T) {
	e := entryFromCells(map[string]string{
		ColPOHuawei:        " PO-1 ",
		ColProject:         "cs",
		ColPRDate:          "bad",
		ColClientUnitPrice: "100",
		ColRequestedQty:    "10",
		ColClientTotal:     "99999", // ignored, recomputed
		ColSubconUnitPrice: "65",
		ColSubconQty:       "10",
		ColMarginPct:       "1",
		ColStatus:          "Healthy",
	})

	if e.POHuawei != "PO-1" || e.Project != "CS" {
		t.Errorf("unexpected text fields %+v", e)
	}
	if e.HasPRDate() {
		t.Error("expected missing date for unparseable input")
	}
	if e.ClientTotal != 1000 || e.MarginPct != 35 {
		t.Errorf("expected derived fields recomputed, got total %v margin %v", e.ClientTotal, e.MarginPct)
	}
	if e.Status != "Healthy" {
		t.Errorf("expected imported status kept verbatim, got %q", e.Status)
	}
}

func TestEntryValue(t *testing.T) {
	e := Entry{POHuawei: "PO", RequestedQty: 3, MarginPct: 12.5}
	if e.Value(ColPOHuawei) != "PO" || e.Value(ColRequestedQty) != 3 || e.Value(ColMarginPct) != 12.5 {
		t.Error("unexpected typed values")
	}
	if e.Value(ColPRDate) != "" {
		t.Error("expected missing date as empty string")
	}
	if e.Value("nope") != nil {
		t.Error("expected nil for unknown column")
	}
	for _, c := range CanonicalColumns {
		if e.Value(c.Key) == nil {
			t.Errorf("column %s has no value", c.Key)
		}
	}
}
