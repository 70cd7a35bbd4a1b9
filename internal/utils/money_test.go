package utils

import "testing"

func TestFormatReal(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "R$ 0,00"},
		{100, "R$ 1,00"},
		{123456, "R$ 1.234,56"},
		{100000000, "R$ 1.000.000,00"},
		{-2050, "-R$ 20,50"},
	}
	for _, tc := range cases {
		if got := FormatReal(tc.in); got != tc.want {
			t.Errorf("FormatReal(%d) = %q, esperava %q", tc.in, got, tc.want)
		}
	}
}

func TestParseRealToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"R$ 1.234,56", 123456},
		{"1234,56", 123456},
		{"1234", 123400},
		{"r$ 20,5", 2050},
		{"-R$ 10,00", -1000},
	}
	for _, tc := range cases {
		got, err := ParseRealToCents(tc.in)
		if err != nil {
			t.Fatalf("ParseRealToCents(%q) erro: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseRealToCents(%q) = %d, esperava %d", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "abc", "1,234"} {
		if _, err := ParseRealToCents(bad); err == nil {
			t.Errorf("ParseRealToCents(%q) deveria falhar", bad)
		}
	}
}
