package counties

var portal = map[string]string{
	"St. Mary's":     "x", // want `jurisdiction name "St. Mary's" is not a portal slug, use "St._Marys"`
	"Baltimore_City": "y",
	"Kent":           "z",
}

func queenAnnes() string {
	return `Queen Anne's` // want "jurisdiction name `Queen Anne's` is not a portal slug, use \"Queen_Annes\""
}

const label = "Prince George's County"
