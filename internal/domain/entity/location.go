package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Location área de almacenamiento con nombre (vocabulario fijo).
type Location string

const (
	LocationAlmacen    Location = "almacen"
	LocationBodega     Location = "bodega"
	LocationOficina    Location = "oficina"
	LocationTaller     Location = "taller"
	LocationTransito   Location = "transito"
	LocationExhibicion Location = "exhibicion"
)

var knownLocations = []Location{
	LocationAlmacen,
	LocationBodega,
	LocationOficina,
	LocationTaller,
	LocationTransito,
	LocationExhibicion,
}

// Locations devuelve el vocabulario de ubicaciones en orden estable.
func Locations() []Location {
	out := make([]Location, len(knownLocations))
	copy(out, knownLocations)
	return out
}

// Valid indica si la ubicación pertenece al vocabulario.
func (l Location) Valid() bool {
	for _, k := range knownLocations {
		if k == l {
			return true
		}
	}
	return false
}

// ParseLocation normaliza la entrada (mayúsculas, tildes, espacios) y la busca en el vocabulario.
// "Almacén", " ALMACEN " y "almacen" resuelven a LocationAlmacen.
func ParseLocation(raw string) (Location, bool) {
	key := foldLocation(raw)
	if key == "" {
		return "", false
	}
	l := Location(key)
	return l, l.Valid()
}

func foldLocation(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.Join(strings.Fields(folded), "")
}
