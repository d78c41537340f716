package money

import (
	"errors"
	"testing"
)

func TestSatToMsat(t *testing.T) {
	cases := []struct {
		sat  int64
		want int64
	}{
		{0, 0},
		{1, 1000},
		{10, 10000},
		{21_000_000, 21_000_000_000},
	}
	for _, c := range cases {
		got, err := SatToMsat(c.sat)
		if err != nil {
			t.Fatalf("SatToMsat(%d): unexpected error %v", c.sat, err)
		}
		if got != c.want {
			t.Fatalf("SatToMsat(%d) = %d, want %d", c.sat, got, c.want)
		}
	}

	if _, err := SatToMsat(-1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative input, got %v", err)
	}
	if _, err := SatToMsat(1 << 62); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestMsatToSatFloors(t *testing.T) {
	cases := []struct {
		msat int64
		want int64
	}{
		{0, 0},
		{999, 0},
		{1000, 1},
		{1999, 1},
		{10000, 10},
		{-5, 0},
	}
	for _, c := range cases {
		if got := MsatToSat(c.msat); got != c.want {
			t.Fatalf("MsatToSat(%d) = %d, want %d", c.msat, got, c.want)
		}
	}
}

func TestParseSat(t *testing.T) {
	got, err := ParseSat("21")
	if err != nil || got != 21 {
		t.Fatalf("ParseSat(21) = %d, %v", got, err)
	}

	// sub-satoshi precision is rejected, never rounded
	if _, err := ParseSat("1.5"); err == nil {
		t.Fatal("expected error for fractional satoshis")
	}
	if _, err := ParseSat("-3"); err == nil {
		t.Fatal("expected error for negative amount")
	}
	if _, err := ParseSat("not a number"); err == nil {
		t.Fatal("expected error for garbage input")
	}
	if _, err := ParseSat("99999999999999999999999999"); err == nil {
		t.Fatal("expected error for overflow")
	}

	// integer-valued decimals are fine
	got, err = ParseSat("10.0")
	if err != nil || got != 10 {
		t.Fatalf("ParseSat(10.0) = %d, %v", got, err)
	}
}

func TestFormatSat(t *testing.T) {
	if got := FormatSat(21); got != "21 sats" {
		t.Fatalf("FormatSat(21) = %q", got)
	}
}
