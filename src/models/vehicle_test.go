package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	cases := map[string]string{
		"abcd12":    "ABCD12",
		" AB-CD-12": "ABCD12",
		"ab cd 12":  "ABCD12",
		"AB.CD.12":  "ABCD12",
		"ABCD12":    "ABCD12",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizePlate(input), "input %q", input)
	}
}
