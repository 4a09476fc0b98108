package repository

import "testing"

func TestTruthyFlag(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"bool true", true, true},
		{"bool false", false, false},
		{"int zero", 0, false},
		{"int nonzero", 1, true},
		{"int64 nonzero", int64(2), true},
		{"int32 zero", int32(0), false},
		{"float nonzero", 1.0, true},
		{"empty string", "", false},
		{"string true", "true", true},
		{"string TRUE", "TRUE", true},
		{"string false", "false", false},
		{"string zero", "0", false},
		{"string one", "1", true},
		{"string no", "no", false},
		{"string off", "off", false},
		{"string yes", "yes", true},
		{"padded string", "  true  ", true},
		{"unknown type", struct{}{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truthyFlag(tc.in); got != tc.want {
				t.Fatalf("truthyFlag(%#v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
