package source

import (
	"github.com/zsj-atlas/zsj-cli/internal/textnorm"
)

type field int

const (
	fieldRegion field = iota
	fieldDistrict
	fieldMunicipality
	fieldCode
	fieldName
	fieldPermanent
	fieldElsewhere
	fieldAbroad
	fieldTotal
	numFields
)

// aliases lists the accepted headers per field: the census export titles
// and the short property names.
var aliases = map[field][]string{
	fieldRegion:       {"Kraj - názov", "kraj_nazov"},
	fieldDistrict:     {"Okres - názov", "okres_nazov"},
	fieldMunicipality: {"Obec - názov", "obec_nazov"},
	fieldCode:         {"Základná sídelná jednotka - kód", "zsj_kod", "kod_zsj"},
	fieldName:         {"Základná sídelná jednotka - názov", "zsj_nazov", "nazov_zsj"},
	fieldPermanent: {
		"Miesto trvalého pobytu alebo obvyklého bydliska - zhodné s trvalým pobytom",
		"pop_trvaly_pobyt",
	},
	fieldElsewhere: {
		"Miesto trvalého pobytu alebo obvyklého bydliska - inde v SR",
		"pop_inde_sr",
	},
	fieldAbroad: {
		"Miesto trvalého pobytu alebo obvyklého bydliska - v zahraničí",
		"pop_zahranicie",
	},
	fieldTotal: {"Spolu", "pop_total"},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]field {
	idx := make(map[string]field)
	for f, names := range aliases {
		for _, n := range names {
			idx[textnorm.Key(n)] = f
		}
	}
	return idx
}

// columnMap holds the column index of each field, -1 when absent.
type columnMap [numFields]int

func mapHeader(header []string) columnMap {
	var m columnMap
	for i := range m {
		m[i] = -1
	}
	for i, h := range header {
		f, ok := aliasIndex[textnorm.Key(h)]
		if ok && m[f] < 0 {
			m[f] = i
		}
	}
	return m
}

func (m columnMap) has(f field) bool { return m[f] >= 0 }

func (m columnMap) get(row []string, f field) string {
	i := m[f]
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
