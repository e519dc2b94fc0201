package location

// Static country/region tables for the shipping-address picker. The
// console ships domestically first, so Vietnam gets the full province
// list; the rest are coarse.
var countries = []string{"Vietnam", "Thailand", "Singapore", "Malaysia", "Indonesia", "Philippines"}

var regionsByCountry = map[string][]string{
	"Vietnam": {
		"Hanoi", "Ho Chi Minh City", "Da Nang", "Hai Phong", "Can Tho",
		"Hue", "Nha Trang", "Da Lat", "Vung Tau", "Quy Nhon",
		"Bac Ninh", "Hai Duong", "Nam Dinh", "Thai Nguyen", "Vinh",
	},
	"Thailand":    {"Bangkok", "Chiang Mai", "Phuket", "Pattaya"},
	"Singapore":   {},
	"Malaysia":    {"Kuala Lumpur", "Penang", "Johor Bahru"},
	"Indonesia":   {"Jakarta", "Surabaya", "Bandung", "Bali"},
	"Philippines": {"Manila", "Cebu", "Davao"},
}

func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

func RegionsFor(country string) []string {
	regions := regionsByCountry[country]
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}

// Resolver holds the current country/region selection and composes the
// free-text shipping address the order stores.
type Resolver struct {
	country string
	region  string
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// SelectCountry sets the country and clears any previously selected
// region, which may no longer belong to it.
func (r *Resolver) SelectCountry(country string) {
	r.country = country
	r.region = ""
}

// SelectRegion is a no-op unless the region belongs to the selected
// country.
func (r *Resolver) SelectRegion(region string) {
	if r.country == "" {
		return
	}
	for _, candidate := range regionsByCountry[r.country] {
		if candidate == region {
			r.region = region
			return
		}
	}
}

func (r *Resolver) Country() string { return r.country }
func (r *Resolver) Region() string  { return r.region }

// Address composes "Region, Country", "Country", or "".
func (r *Resolver) Address() string {
	switch {
	case r.country == "":
		return ""
	case r.region == "":
		return r.country
	default:
		return r.region + ", " + r.country
	}
}
