// Package geo places institutions on the map of Denmark.
package geo

import (
	"errors"
	"sort"
	"strings"

	"uddannelsebi/internal/dataprocessing"
	"uddannelsebi/pkg/contracts/domain"
)

// ErrNoCoordinates is returned when no institution could be placed on the map
var ErrNoCoordinates = errors.New("Ingen koordinater matchede institutionerne. Tilføj flere til mapping-tabellen.")

// coordinates holds the known institutions keyed by subinstitution name
var coordinates = map[string]domain.Coordinate{
	"Københavns Professionshøjskole":                      {Lat: 55.6909, Lon: 12.5529},
	"Professionshøjskolen VIA University College":         {Lat: 56.1629, Lon: 10.2039},
	"Erhvervsakademi Aarhus":                              {Lat: 56.1629, Lon: 10.2039},
	"Professionshøjskolen University College Nordjylland": {Lat: 57.0488, Lon: 9.9217},
	"Erhvervsakademiet Copenhagen Business Academy":       {Lat: 55.6759, Lon: 12.5655},
	"University College Lillebælt":                        {Lat: 55.4038, Lon: 10.4024},
	"University College Sjælland":                         {Lat: 55.4377, Lon: 11.5666},
	"University College Syddanmark":                       {Lat: 55.4904, Lon: 9.4722},
	"Erhvervsakademi Dania":                               {Lat: 56.4604, Lon: 10.0364},
	"Erhvervsakademi SydVest":                             {Lat: 55.4765, Lon: 8.4594},
	"Erhvervsakademi MidtVest":                            {Lat: 56.3615, Lon: 8.6164},
	"Erhvervsakademi Sjælland":                            {Lat: 55.4580, Lon: 11.5820},
	"IBA Erhvervsakademi Kolding":                         {Lat: 55.4910, Lon: 9.4720},
	"Erhvervsakademi Bornholm":                            {Lat: 55.1037, Lon: 14.7065},
	"Erhvervsakademi Nordjylland":                         {Lat: 57.0488, Lon: 9.9217},
}

// Lookup returns the coordinate of an institution. Names are matched
// exactly after trimming surrounding whitespace.
func Lookup(name string) (domain.Coordinate, bool) {
	c, ok := coordinates[strings.TrimSpace(name)]
	return c, ok
}

// Known returns the names in the coordinate table in alphabetical order
func Known() []string {
	names := make([]string, 0, len(coordinates))
	for name := range coordinates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MapPoint is a subinstitution total placed on the map
type MapPoint struct {
	dataprocessing.SubinstitutionTotal
	domain.Coordinate
}

// MapPoints attaches coordinates to subinstitution totals and drops every
// institution missing from the table. ErrNoCoordinates is returned when
// nothing is left.
func MapPoints(totals []dataprocessing.SubinstitutionTotal) ([]MapPoint, error) {
	points := make([]MapPoint, 0, len(totals))
	for _, t := range totals {
		c, ok := Lookup(t.Subinstitution)
		if !ok {
			continue
		}
		points = append(points, MapPoint{SubinstitutionTotal: t, Coordinate: c})
	}
	if len(points) == 0 {
		return nil, ErrNoCoordinates
	}
	return points, nil
}
