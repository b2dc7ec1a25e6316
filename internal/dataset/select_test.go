package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectionFrame(t *testing.T) *Frame {
	t.Helper()
	var b strings.Builder
	b.WriteString("customer_id,serial,flag,steady,spend,visits,spend_twice\n")
	for i := 0; i < 40; i++ {
		spend := 10 + (i%8)*5
		visits := 1 + (i*7)%6
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%d,%d\n", i, 1000+i, i%2, 100+i%5, spend, visits, spend*2)
	}
	return mustLoad(t, b.String())
}

func TestSelectFeatures(t *testing.T) {
	f := selectionFrame(t)
	sel, err := SelectFeatures(f, DefaultSelectOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"spend", "visits"}, sel.Selected)
	reasons := map[string]string{}
	for _, e := range sel.Excluded {
		reasons[e.Column] = e.Reason
	}
	assert.Equal(t, map[string]string{
		"customer_id": "identifier name",
		"serial":      "nearly unique values",
		"flag":        "too few distinct values",
		"steady":      "low variance",
		"spend_twice": "highly correlated",
	}, reasons)
}

func TestSelectFeaturesCapsByVariance(t *testing.T) {
	f := selectionFrame(t)
	opt := DefaultSelectOptions()
	opt.MaxFeatures = 1
	opt.CorrelationThreshold = 0
	sel, err := SelectFeatures(f, opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"spend_twice"}, sel.Selected)
}

func TestFilterByVariance(t *testing.T) {
	f := mustLoad(t, "steady,spend,centered,flat\n100,10,-5,0\n101,20,5,0\n100,30,-5,0\n101,40,5,0\n")
	kept, err := FilterByVariance(f, []string{"steady", "spend", "centered", "flat"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"spend", "centered"}, kept)

	_, err = FilterByVariance(f, []string{"nope"}, 1)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
