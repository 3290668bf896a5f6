package checksum

import "testing"

func TestKeyHash16KnownValues(t *testing.T) {
	cases := map[string]uint16{
		"":         5381,
		"a":        46598,
		"sensorID": 9996,
		"k00":      32880,
		"hello":    12441,
	}

	for key, want := range cases {
		if got := KeyHash16(key); got != want {
			t.Errorf("KeyHash16(%q) = %d, want %d", key, got, want)
		}
	}
}
