package model

// PropertyTypes is the fixed option set a listing must be classified under.
var PropertyTypes = []string{
	"rv_park",
	"campground",
	"mobile_home_park",
	"resort",
	"marina",
	"mixed_use",
}

func ValidPropertyType(t string) bool {
	for _, pt := range PropertyTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// stateCodes covers the 50 states plus DC.
var stateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {},
	"TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {},
}

func ValidState(code string) bool {
	_, ok := stateCodes[code]
	return ok
}

// Document categories. Uploads are classified by the service based on file
// name; anything unrecognized falls into CategoryOther.
const (
	CategoryOfferingMemorandum = "offering_memorandum"
	CategoryFinancials         = "financials"
	CategoryOther              = "other"
)
