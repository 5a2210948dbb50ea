package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Totarae/openelex/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexPage = `<html><body>
<h1>2012 Election Data</h1>
<ul>
  <li><a href="Allegany_By_Precinct_2012_General.csv">Allegany</a></li>
  <li><a href="Baltimore_City_By_Precinct_2012_General.csv">Baltimore City</a></li>
  <li><a href="/elections/2012/election_data/Baltimore_By_Precinct_2012_General.csv">Baltimore County</a></li>
  <li><a href="St._Marys_By_Precinct_2012_General.csv">St. Mary's</a></li>
  <li><a href="St._Marys_By_Precinct_2012_General.csv">duplicate</a></li>
  <li><a href="State_Congressional_Districts_2012_General.csv">Statewide</a></li>
  <li><a href="#top">top</a></li>
  <li><a href="notes.pdf">Notes</a></li>
</ul>
</body></html>`

const base = "https://elections.maryland.gov/elections/2012/election_data/index.html"

func TestExtractLinks(t *testing.T) {
	links, err := parser.ExtractLinks(strings.NewReader(indexPage), base)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://elections.maryland.gov/elections/2012/election_data/Allegany_By_Precinct_2012_General.csv",
		"https://elections.maryland.gov/elections/2012/election_data/Baltimore_City_By_Precinct_2012_General.csv",
		"https://elections.maryland.gov/elections/2012/election_data/Baltimore_By_Precinct_2012_General.csv",
		"https://elections.maryland.gov/elections/2012/election_data/St._Marys_By_Precinct_2012_General.csv",
		"https://elections.maryland.gov/elections/2012/election_data/State_Congressional_Districts_2012_General.csv",
		"https://elections.maryland.gov/elections/2012/election_data/notes.pdf",
	}, links)
}

func TestResultFileLinks(t *testing.T) {
	links, err := parser.ExtractLinks(strings.NewReader(indexPage), base)
	require.NoError(t, err)

	grouped := parser.ResultFileLinks(links)

	assert.Len(t, grouped, 4)
	assert.Equal(t, []string{"https://elections.maryland.gov/elections/2012/election_data/Baltimore_City_By_Precinct_2012_General.csv"}, grouped["Baltimore_City"])
	assert.Equal(t, []string{"https://elections.maryland.gov/elections/2012/election_data/Baltimore_By_Precinct_2012_General.csv"}, grouped["Baltimore"])
	assert.Len(t, grouped["St._Marys"], 1)
	assert.Len(t, grouped["Allegany"], 1)
	assert.NotContains(t, grouped, "State")
}

const resultsCSV = "\ufeffCounty,Election District - Precinct,Office Name,Office District,Candidate Name,Party,Winner,Write-In?,Total Votes\n" +
	"St. Mary's,001-001,President - Vice Pres,,Barack Obama,DEM,Y,N,\"1,204\"\n" +
	"St. Mary's,001-001,President - Vice Pres,,Mitt Romney,REP,N,N,988\n" +
	",,,,,,,,\n" +
	"St. Mary's,001-002,Rep in Congress,5,Write-In Candidate,,N,Y,\n"

func TestParseResults(t *testing.T) {
	rows, err := parser.ParseResults(strings.NewReader(resultsCSV), "St._Marys")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "St._Marys", rows[0].Jurisdiction)
	assert.Equal(t, "St. Mary's", rows[0].County)
	assert.Equal(t, "001-001", rows[0].Precinct)
	assert.Equal(t, "President - Vice Pres", rows[0].Office)
	assert.Equal(t, "Barack Obama", rows[0].Candidate)
	assert.Equal(t, "DEM", rows[0].Party)
	assert.True(t, rows[0].Winner)
	assert.False(t, rows[0].WriteIn)
	assert.Equal(t, 1204, rows[0].Votes)

	assert.Equal(t, 988, rows[1].Votes)
	assert.False(t, rows[1].Winner)

	assert.Equal(t, "5", rows[2].OfficeDistrict)
	assert.True(t, rows[2].WriteIn)
	assert.Equal(t, 0, rows[2].Votes)
}

func TestParseResults_AlternateColumns(t *testing.T) {
	data := "County Name,Election District,Office Name,Candidate Name,Party,Election Night Votes\n" +
		"Kent,01,Governor,Someone,REP,12\n"

	rows, err := parser.ParseResults(strings.NewReader(data), "Kent")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kent", rows[0].County)
	assert.Equal(t, "01", rows[0].Precinct)
	assert.Equal(t, 12, rows[0].Votes)
}

func TestParseResults_Errors(t *testing.T) {
	_, err := parser.ParseResults(strings.NewReader(""), "Kent")
	assert.Error(t, err)

	_, err = parser.ParseResults(strings.NewReader("County,Office Name\nKent,Governor\n"), "Kent")
	assert.True(t, errors.Is(err, parser.ErrMissingColumn))

	_, err = parser.ParseResults(strings.NewReader("Office Name,Candidate Name,Total Votes\nGovernor,A,many\n"), "Kent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
