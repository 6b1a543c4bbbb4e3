package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eokit/stacforge/classify"
)

func TestDefaultRegistry(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	b, err := r.Resolve(classify.ProductType("MSI_L1C"))
	require.NoError(t, err)
	assert.Equal(t, "S2MSIL1C", b.RuleName)
	assert.Equal(t, "S2MSI1C", b.Label)

	_, err = r.Resolve(classify.ProductType("NO_SUCH_TYPE"))
	assert.Error(t, err)
}

func TestDefaultRuleTablesAllLoad(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, b := range r.bindings {
		if seen[b.RuleName] {
			continue
		}
		seen[b.RuleName] = true
		rules, err := r.Rules(b.RuleName)
		require.NoError(t, err, b.RuleName)
		assert.NotEmpty(t, rules, b.RuleName)
	}
}

func TestRulesCached(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	first, err := r.Rules("S1SAR")
	require.NoError(t, err)
	second, err := r.Rules("S1SAR")
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0], "cached slice is reused")
}

func TestParseRuleTable(t *testing.T) {
	const table = `metadata;file;mappings;datatype
platformShortName;static;=SENTINEL-2;String
#disabled;manifest.safe;//a/text();String
skipped;manifest.safe;;String
orbitNumber;manifest.safe;//*[local-name()='orbitNumber']/text();Int
size;manifest.safe;:size;Int64
bands;[manifest.safe, MTD.xml];[//a/text(), //b/text()];String
`
	rules, err := ParseRuleTable(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, rules, 4)

	assert.True(t, rules[0].Static)
	assert.Equal(t, "SENTINEL-2", rules[0].Constant)
	assert.Equal(t, []string{StaticMetafile}, rules[0].Metafiles)

	assert.Equal(t, "orbitNumber", rules[1].Attribute)
	assert.Equal(t, TypeInt, rules[1].Type)
	require.Len(t, rules[1].Exprs, 1)

	assert.Equal(t, "size", rules[2].Intrinsic)

	assert.True(t, rules[3].Multi)
	assert.Equal(t, []string{"manifest.safe", "MTD.xml"}, rules[3].Metafiles)
	assert.Len(t, rules[3].Exprs, 2)
}

func TestParseRuleTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{
			"unknown datatype",
			"metadata;file;mappings;datatype\na;m.xml;//a;Varchar\n",
		},
		{
			"duplicate attribute",
			"metadata;file;mappings;datatype\na;m.xml;//a;String\na;m.xml;//b;String\n",
		},
		{
			"bad expression",
			"metadata;file;mappings;datatype\na;m.xml;//a[;String\n",
		},
		{
			"bad arity",
			"metadata;file;mappings;datatype\na;m.xml;map(//a);String\n",
		},
		{
			"unknown intrinsic",
			"metadata;file;mappings;datatype\na;m.xml;:mtime;String\n",
		},
		{
			"wrong header",
			"name;file;xpath;type\na;m.xml;//a;String\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRuleTable(strings.NewReader(tc.table))
			assert.Error(t, err)
		})
	}
}

func TestSplitBracketList(t *testing.T) {
	assert.Equal(t, []string{"a"}, splitBracketList("a"))
	assert.Equal(t, []string{"a", "b"}, splitBracketList("[a, b]"))
	assert.Equal(t,
		[]string{"map(//a, '{\"x\": \"y, z\"}')", "//b"},
		splitBracketList("[map(//a, '{\"x\": \"y, z\"}'), //b]"))
	assert.Nil(t, splitBracketList(""))
}

func TestIsPseudo(t *testing.T) {
	assert.True(t, IsPseudo("filename"))
	assert.True(t, IsPseudo("utcnow"))
	assert.False(t, IsPseudo("//filename"))
}
