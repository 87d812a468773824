package climate

import (
	"fmt"
	"strings"
)

// DefaultArchiveRoot is the GES DISC OPeNDAP root for MERRA-2 collections.
const DefaultArchiveRoot = "https://goldsmr4.gesdisc.eosdis.nasa.gov/opendap/MERRA2"

const granuleExt = "nc4"

// Location addresses one daily granule in the archive.
type Location struct {
	URL  string
	Year int
}

// NamingPrefix returns the MERRA-2 stream prefix used for granules of year.
// The archive was produced in four streams, each with its own prefix.
func NamingPrefix(year int) string {
	switch {
	case year <= 1991:
		return "MERRA2_100"
	case year <= 2000:
		return "MERRA2_200"
	case year <= 2010:
		return "MERRA2_300"
	default:
		return "MERRA2_400"
	}
}

// Resolver builds granule locations under a base archive root.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver. An empty root falls back to DefaultArchiveRoot.
func NewResolver(root string) Resolver {
	if root == "" {
		root = DefaultArchiveRoot
	}
	return Resolver{root: strings.TrimRight(root, "/")}
}

// Locate returns the granule location for family on the given day.
func (r Resolver) Locate(f Family, year int, month, day int) Location {
	name := fmt.Sprintf("%s.%s.%04d%02d%02d.%s", NamingPrefix(year), f.Variant(), year, month, day, granuleExt)
	return Location{
		URL:  fmt.Sprintf("%s/%s/%04d/%02d/%s", r.root, f.Collection, year, month, name),
		Year: year,
	}
}
