package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Empty(t *testing.T) {
	assert.Nil(t, ParseCSV(""))
}

func TestParseCSV_RoundTrip(t *testing.T) {
	// Rows without embedded commas/quotes/newlines survive join+parse.
	rows := [][]string{
		{"1", "09:00", "09:40", "국어"},
		{"2", "09:50", "10:30", "수학"},
		{"", "", ""},
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, strings.Join(r, ","))
	}
	got := ParseCSV(strings.Join(lines, "\n"))
	assert.Equal(t, rows, got)
}

func TestParseCSV_QuotedFields(t *testing.T) {
	got := ParseCSV(`"a,b",c`)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a,b", "c"}, got[0])
}

func TestParseCSV_EscapedQuote(t *testing.T) {
	got := ParseCSV(`"say ""hi""",x`)
	require.Len(t, got, 1)
	assert.Equal(t, []string{`say "hi"`, "x"}, got[0])
}

func TestParseCSV_NewlineInsideQuotes(t *testing.T) {
	got := ParseCSV("\"대\n체\",b")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"대\n체", "b"}, got[0])
}

func TestParseCSV_MixedLineEndings(t *testing.T) {
	got := ParseCSV("a,b\r\nc,d\ne,f")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b"}, got[0])
	assert.Equal(t, []string{"c", "d"}, got[1])
	assert.Equal(t, []string{"e", "f"}, got[2])
}

func TestParseCSV_TrailingRowWithoutNewline(t *testing.T) {
	got := ParseCSV("a,b\nc,d")
	require.Len(t, got, 2)
	assert.Equal(t, []string{"c", "d"}, got[1])
}

func TestParseCSV_TrailingEmptyField(t *testing.T) {
	got := ParseCSV("a,\n")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a", ""}, got[0])
}
