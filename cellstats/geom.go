package cellstats

import (
	"fmt"
	"strings"

	"github.com/golang/geo/s2"
)

// CellToWKT renders the cell boundary as a closed WKT polygon in lng/lat order.
func CellToWKT(id s2.CellID) string {
	cell := s2.CellFromCellID(id)
	var b strings.Builder
	b.WriteString("POLYGON((")
	for k := 0; k < 4; k++ {
		latlng := s2.LatLngFromPoint(cell.Vertex(k))
		fmt.Fprintf(&b, "%v %v, ", latlng.Lng.Degrees(), latlng.Lat.Degrees())
	}
	closingPoint := s2.LatLngFromPoint(cell.Vertex(0))
	fmt.Fprintf(&b, "%v %v))", closingPoint.Lng.Degrees(), closingPoint.Lat.Degrees())
	return b.String()
}
