package holidays

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"usa", "usa", false},
		{"ESP", "", true},
		{"mex - México", "mex", false},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := CountryCode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("CountryCode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CountryCode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCountryLabels(t *testing.T) {
	labels := CountryLabels()
	assert.Equal(t, "deu - Alemania", labels[0])
	assert.Contains(t, labels, "jpn - Japón")
}
