package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want []string
	}{
		{name: "plain", line: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "quoted delimiter", line: `a,"b,c",d`, want: []string{"a", "b,c", "d"}},
		{name: "empty line", line: "", want: []string{""}},
		{name: "trailing delimiter", line: "a,b,", want: []string{"a", "b", ""}},
		{name: "surrounding whitespace", line: ` a , b `, want: []string{"a", "b"}},
		{name: "quoted whitespace trimmed", line: `" a ",b`, want: []string{"a", "b"}},
		{name: "empty fields", line: ",,", want: []string{"", "", ""}},
		{name: "unterminated quote swallows rest", line: `a,"b,c`, want: []string{"a", "b,c"}},
		{name: "leading unterminated quote", line: `",a`, want: []string{",a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SplitLine(tc.line))
		})
	}
}

func TestSplitLineQuotesDoNotEscape(t *testing.T) {
	// Doubled quotes are not an escape sequence; both toggle the flag and
	// neither is emitted.
	require.Equal(t, []string{"ab", "c"}, SplitLine(`a""b,c`))
}
