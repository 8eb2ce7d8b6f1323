package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"ndjson", FormatNDJSON},
		{"NDJSON", FormatNDJSON},
		{"", FormatNDJSON},
		{"jsonl", FormatNDJSON},
		{"gotest", FormatGoTest},
		{"test2json", FormatGoTest},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("junit")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNewDecoder(t *testing.T) {
	d, err := NewDecoder(FormatNDJSON, strings.NewReader(""))
	require.NoError(t, err)
	assert.IsType(t, &NDJSONDecoder{}, d)

	d, err = NewDecoder(FormatGoTest, strings.NewReader(""))
	require.NoError(t, err)
	assert.IsType(t, &GoTestDecoder{}, d)

	_, err = NewDecoder("xml", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
