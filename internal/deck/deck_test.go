package deck

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
)

func sample() []models.NewsItem {
	return []models.NewsItem{
		{ID: "1", Title: "Rate cut", Country: "Japan"},
		{ID: "2", Title: "Exports up", Country: "Indonesia"},
		{ID: "3", Title: "Yen slides", Country: "Japan"},
		{ID: "4", Title: "Global rally"},
		{ID: "5", Title: "Jobs report", Country: "United States"},
	}
}

func newDeck(seed uint64) *Deck {
	return New(WithRand(rand.New(rand.NewPCG(seed, seed+1))))
}

func drain(d *Deck) []string {
	var ids []string
	for {
		item, ok := d.Current()
		if !ok {
			return ids
		}
		ids = append(ids, item.ID)
		d.Advance()
	}
}

func TestLoadIsPermutation(t *testing.T) {
	d := newDeck(1)
	d.Load(sample())

	ids := drain(d)
	sort.Strings(ids)
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
	require.True(t, d.Exhausted())
}

func TestAdvanceNeverWraps(t *testing.T) {
	d := newDeck(2)
	d.Load(sample()[:1])

	d.Advance()
	d.Advance()
	d.Advance()
	_, ok := d.Current()
	require.False(t, ok)
	cursor, total := d.Position()
	require.Equal(t, 1, cursor)
	require.Equal(t, 1, total)
}

func TestEmptyDeck(t *testing.T) {
	d := newDeck(3)
	d.Load(nil)

	_, ok := d.Current()
	require.False(t, ok)
	require.Empty(t, d.Countries())
}

func TestFilterPreservesShuffledOrder(t *testing.T) {
	d := newDeck(4)
	d.Load(sample())

	var japan []string
	for _, id := range drain(d) {
		if id == "1" || id == "3" {
			japan = append(japan, id)
		}
	}

	d.SetFilter("Japan")
	require.Equal(t, japan, drain(d))

	d.SetFilter("")
	require.Len(t, drain(d), 5)
}

func TestFilterUnknownCountryEmptiesView(t *testing.T) {
	d := newDeck(5)
	d.Load(sample())

	d.SetFilter("Brazil")
	_, ok := d.Current()
	require.False(t, ok)
}

func TestFilterRewindsCursor(t *testing.T) {
	d := newDeck(6)
	d.Load(sample())
	d.Advance()
	d.Advance()

	d.SetFilter("Indonesia")
	cursor, total := d.Position()
	require.Equal(t, 0, cursor)
	require.Equal(t, 1, total)

	item, ok := d.Current()
	require.True(t, ok)
	require.Equal(t, "2", item.ID)
}

func TestToggleFilterClearsActiveLabel(t *testing.T) {
	d := newDeck(7)
	d.Load(sample())

	d.ToggleFilter("Japan")
	require.Equal(t, "Japan", d.Filter())
	d.ToggleFilter("Japan")
	require.Equal(t, "", d.Filter())
	d.ToggleFilter("Indonesia")
	require.Equal(t, "Indonesia", d.Filter())
}

func TestResetClearsFilterAndRewinds(t *testing.T) {
	d := newDeck(8)
	d.Load(sample())
	d.SetFilter("Japan")
	d.Advance()

	d.Reset()
	require.Equal(t, "", d.Filter())
	cursor, total := d.Position()
	require.Equal(t, 0, cursor)
	require.Equal(t, 5, total)
}

func TestCurrentIsReferentiallyStable(t *testing.T) {
	d := newDeck(9)
	d.Load(sample())

	a, _ := d.Current()
	b, _ := d.Current()
	require.Same(t, a, b)

	d.Advance()
	c, _ := d.Current()
	require.NotSame(t, a, c)
}

func TestCountriesDistinctInSourceOrder(t *testing.T) {
	d := newDeck(10)
	d.Load(sample())

	require.Equal(t, []string{"Japan", "Indonesia", "United States"}, d.Countries())
}
