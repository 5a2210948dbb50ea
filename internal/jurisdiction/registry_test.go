package jurisdiction_test

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Totarae/openelex/internal/jurisdiction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var canonical = []string{
	"Allegany", "Anne_Arundel", "Baltimore_City", "Baltimore", "Calvert",
	"Caroline", "Carroll", "Cecil", "Charles", "Dorchester", "Frederick",
	"Garrett", "Harford", "Howard", "Kent", "Montgomery", "Prince_Georges",
	"Queen_Annes", "St._Marys", "Somerset", "Talbot", "Washington", "Wicomico",
	"Worcester",
}

func TestList_Canonical(t *testing.T) {
	got := jurisdiction.List()

	require.Len(t, got, 24)
	assert.Equal(t, canonical, got)
	assert.Equal(t, []string{"Allegany", "Anne_Arundel", "Baltimore_City", "Baltimore", "Calvert"}, got[:5])
	assert.Equal(t, []string{"Washington", "Wicomico", "Worcester"}, got[len(got)-3:])
}

func TestList_Invariants(t *testing.T) {
	slugs := jurisdiction.List()
	require.NoError(t, jurisdiction.Validate(slugs))

	seen := make(map[string]struct{})
	for _, s := range slugs {
		assert.NotEmpty(t, s)
		assert.NotContains(t, s, "'")
		assert.False(t, strings.ContainsAny(s, " \t\r\n"), "slug %q contains whitespace", s)
		assert.NotEqual(t, "None", s)
		assert.NotEqual(t, "null", s)
		for _, r := range s {
			ok := r == '_' || r == '.' || (r >= '0' && r <= '9') ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
			assert.True(t, ok, "slug %q contains %q", s, r)
		}
		seen[s] = struct{}{}
	}
	assert.Len(t, seen, len(slugs))
}

func TestList_Deterministic(t *testing.T) {
	assert.Equal(t, jurisdiction.List(), jurisdiction.List())
}

func TestList_ReturnsCopy(t *testing.T) {
	first := jurisdiction.List()
	first[0] = "Fairfax"
	_ = append(first[:1], first[2:]...)

	second := jurisdiction.List()
	assert.Equal(t, canonical, second)
}

func TestList_ConcurrentReaders(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := jurisdiction.List()
			got[3] = "mutated"
			assert.Equal(t, "Baltimore", jurisdiction.List()[3])
		}()
	}
	wg.Wait()
}

func TestMembership(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"Baltimore_City", true},
		{"Baltimore", true},
		{"St._Marys", true},
		{"Queen_Annes", true},
		{"Prince_Georges", true},
		{"Baltimore City", false},
		{"St. Mary's", false},
		{"Queen Anne's", false},
		{"baltimore", false},
		{"Fairfax", false},
		{"Arlington", false},
		{"", false},
		{"None", false},
		{"null", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, jurisdiction.Contains(tt.slug))
		})
	}
}

func TestBaltimoreCityAndCountyAreDistinct(t *testing.T) {
	city := jurisdiction.Index("Baltimore_City")
	county := jurisdiction.Index("Baltimore")

	require.GreaterOrEqual(t, city, 0)
	require.GreaterOrEqual(t, county, 0)
	assert.NotEqual(t, city, county)
	assert.Equal(t, city+1, county)
}

func TestSortedKeepsSet(t *testing.T) {
	sorted := jurisdiction.List()
	sort.Strings(sorted)

	assert.ElementsMatch(t, canonical, sorted)
	for i := 1; i < len(sorted); i++ {
		assert.NotEqual(t, sorted[i-1], sorted[i])
	}
}

func TestFilterIsIndependentOfCallOrder(t *testing.T) {
	filter := func() []string {
		var out []string
		for _, s := range jurisdiction.List() {
			if strings.Contains(s, "_") {
				out = append(out, s)
			}
		}
		return out
	}

	before := filter()
	_ = jurisdiction.List()
	after := filter()

	assert.Equal(t, []string{"Anne_Arundel", "Baltimore_City", "Prince_Georges", "Queen_Annes", "St._Marys"}, before)
	assert.Equal(t, before, after)
}

func TestURLsAreDistinct(t *testing.T) {
	urls := make(map[string]string)
	for _, s := range jurisdiction.List() {
		u := fmt.Sprintf("https://elections.example/%s/", s)
		urls[u] = s
	}
	require.Len(t, urls, 24)

	for u, slug := range urls {
		matches := 0
		for _, s := range jurisdiction.List() {
			if strings.Contains(u, "/"+s+"/") {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "url for %s", slug)
	}
}

func TestName(t *testing.T) {
	name, ok := jurisdiction.Name("St._Marys")
	assert.True(t, ok)
	assert.Equal(t, "St. Mary's", name)

	name, ok = jurisdiction.Name("Baltimore_City")
	assert.True(t, ok)
	assert.Equal(t, "Baltimore City", name)

	_, ok = jurisdiction.Name("Fairfax")
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	names := jurisdiction.Names()

	assert.Equal(t, "St._Marys", names["St. Mary's"])
	assert.Equal(t, "Queen_Annes", names["Queen Anne's"])
	assert.Equal(t, "Prince_Georges", names["Prince George's"])
	assert.Equal(t, "Baltimore_City", names["Baltimore City"])
	assert.Equal(t, "Anne_Arundel", names["Anne Arundel"])
	assert.NotContains(t, names, "Kent")
}

func TestForState(t *testing.T) {
	for _, code := range []string{"md", "MD", " Md "} {
		slugs, err := jurisdiction.ForState(code)
		require.NoError(t, err)
		assert.Equal(t, canonical, slugs)
	}

	_, err := jurisdiction.ForState("va")
	assert.True(t, errors.Is(err, jurisdiction.ErrUnknownState))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		slugs   []string
		wantErr bool
	}{
		{"ok", []string{"Kent", "St._Marys"}, false},
		{"empty", []string{"Kent", ""}, true},
		{"duplicate", []string{"Kent", "Kent"}, true},
		{"apostrophe", []string{"Queen_Anne's"}, true},
		{"space", []string{"Baltimore City"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := jurisdiction.Validate(tt.slugs)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func BenchmarkList(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = jurisdiction.List()
	}
}

func ExampleList() {
	slugs := jurisdiction.List()
	fmt.Println(len(slugs))
	fmt.Println(slugs[2], slugs[3], slugs[18])

	// Output:
	// 24
	// Baltimore_City Baltimore St._Marys
}
