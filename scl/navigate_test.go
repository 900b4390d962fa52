package scl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siblingSCL = `<SCL>
  <DataSet name="DS">
    <FCDA daName="a"/>
    <FCDA daName="b"/>
    <Private/>
    <FCDA daName="c"/>
    <FCDA daName="d"/>
  </DataSet>
</SCL>`

func fcdasOf(t *testing.T, doc *Document) []*Node {
	t.Helper()
	fcdas := doc.Root.DescendantsByTag("FCDA")
	require.Len(t, fcdas, 4)
	return fcdas
}

func TestNextSibling(t *testing.T) {
	doc, err := ParseString(siblingSCL)
	require.NoError(t, err)
	fcdas := fcdasOf(t, doc)

	// NextSibling is tag-agnostic: b is followed by the Private element.
	next := fcdas[1].NextSibling()
	require.NotNil(t, next)
	assert.Equal(t, "Private", next.Tag)

	assert.Nil(t, fcdas[3].NextSibling(), "last child has no following sibling")
	assert.Nil(t, doc.Root.NextSibling(), "root has no siblings")
}

func TestFollowingSiblings(t *testing.T) {
	doc, err := ParseString(siblingSCL)
	require.NoError(t, err)
	fcdas := fcdasOf(t, doc)

	tests := []struct {
		name  string
		start *Node
		count int
		want  []string
	}{
		{"unlimited skips other tags", fcdas[0], -1, []string{"b", "c", "d"}},
		{"count caps the scan", fcdas[0], 2, []string{"b", "c"}},
		{"count beyond available", fcdas[2], 7, []string{"d"}},
		{"zero count", fcdas[0], 0, nil},
		{"last element", fcdas[3], -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FollowingSiblings(tt.start, tt.count)
			var names []string
			for _, n := range got {
				names = append(names, n.Attr("daName"))
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFollowingSiblingsNeverLooksBackward(t *testing.T) {
	doc, err := ParseString(siblingSCL)
	require.NoError(t, err)
	fcdas := fcdasOf(t, doc)

	for _, sib := range FollowingSiblings(fcdas[2], -1) {
		assert.True(t, Precedes(fcdas[2], sib))
	}
}

func TestAncestorByTag(t *testing.T) {
	doc, err := ParseString(siblingSCL)
	require.NoError(t, err)
	fcdas := fcdasOf(t, doc)

	ds := fcdas[0].AncestorByTag("DataSet")
	require.NotNil(t, ds)
	assert.Equal(t, "DS", ds.Attr("name"))

	assert.Nil(t, fcdas[0].AncestorByTag("IED"))
	assert.Nil(t, doc.Root.AncestorByTag("SCL"), "element is not its own ancestor")
}

func TestChildrenByTag(t *testing.T) {
	doc, err := ParseString(siblingSCL)
	require.NoError(t, err)

	ds := doc.Root.DescendantsByTag("DataSet")[0]
	assert.Len(t, ds.ChildrenByTag("FCDA"), 4)
	assert.Len(t, ds.ChildrenByTag("Private"), 1)
	assert.Empty(t, ds.ChildrenByTag("ExtRef"))
}

func TestPrecedes(t *testing.T) {
	doc, err := ParseString(siblingSCL)
	require.NoError(t, err)
	fcdas := fcdasOf(t, doc)

	assert.True(t, Precedes(fcdas[0], fcdas[1]))
	assert.False(t, Precedes(fcdas[1], fcdas[0]))
	assert.False(t, Precedes(fcdas[0], fcdas[0]))
	assert.False(t, Precedes(nil, fcdas[0]))
}
