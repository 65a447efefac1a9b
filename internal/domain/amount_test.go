package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_Truthy(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`null`, false},
		{`""`, false},
		{`0`, false},
		{`0.0`, false},
		{`false`, false},
		{`"0"`, true},
		{`1000`, true},
		{`"45 000"`, true},
		{`true`, true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.body), &a))
			assert.Equal(t, tt.want, a.Truthy())
		})
	}

	assert.False(t, Amount{}.Truthy())
	assert.False(t, Truthy(0))
	assert.True(t, Truthy(NewAmount(12.5)))
}
