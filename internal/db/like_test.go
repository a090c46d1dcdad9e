package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Goa", `%Goa%`},
		{"50%", `%50\%%`},
		{"sea_side", `%sea\_side%`},
		{`C:\inn`, `%C:\\inn%`},
		{"", `%%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsPattern(tt.in), tt.in)
	}
}
