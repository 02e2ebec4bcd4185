// Package geo provides coordinate sanity checks for geocode results.
package geo

import "github.com/twpayne/go-geom"

// japanBounds covers the Japanese archipelago including the outlying
// islands (Yonaguni to the southwest, Minami-Torishima to the east,
// Etorofu to the northeast). Coordinates are lon/lat.
var japanBounds = geom.NewBounds(geom.XY).Set(122.93, 24.04, 153.99, 45.56)

// InJapan reports whether a coordinate pair falls inside the Japan
// bounding box. Geocode hits outside it are treated as misses, since a
// broadened name query can match a same-named place abroad.
func InJapan(lat, lon float64) bool {
	return japanBounds.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}
