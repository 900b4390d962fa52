package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	r1 := &Record{Kind: KindUpdate, Element: 1}
	r2 := &Record{Kind: KindInsert, Element: 2}
	r3 := &Record{Kind: KindRemove, Element: 3}
	r4 := &Record{Kind: KindUpdate, Element: 4}

	items := []Item{
		{Record: r1},
		{Batch: []Item{
			{Record: r2},
			{Batch: []Item{
				{Record: r3},
			}},
		}},
		{}, // neither arm: dropped
		{Record: r4},
	}

	got := Flatten(items)
	require.Len(t, got, 4)
	assert.Equal(t, []*Record{r1, r2, r3, r4}, got, "nesting flattens in order")
}

func TestFlattenEmpty(t *testing.T) {
	assert.Nil(t, Flatten(nil))
	assert.Nil(t, Flatten([]Item{{Batch: []Item{}}}))
}

func TestRecordFlags(t *testing.T) {
	r := &Record{
		Kind:                        KindUpdate,
		IgnoreSupervision:           true,
		CheckOnlyPreferredBasicType: true,
	}
	flags := RecordFlags(r)
	assert.True(t, flags.IgnoreSupervision)
	assert.True(t, flags.CheckOnlyPreferredBasicType)

	assert.Equal(t, Flags{}, RecordFlags(&Record{Kind: KindUpdate}))
}
