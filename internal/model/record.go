package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedRecord marks a record that cannot be emitted because an
// identifying field is missing or a count is negative.
var ErrMalformedRecord = eris.New("malformed population record")

// PopulationRecord is one row of the census table: a micro-area (ZSJ) and
// its residents split by place of permanent residence.
type PopulationRecord struct {
	RegionName           string `json:"kraj_nazov"`
	DistrictName         string `json:"okres_nazov"`
	MunicipalityName     string `json:"obec_nazov"`
	MicroAreaCode        string `json:"zsj_kod"`
	MicroAreaName        string `json:"zsj_nazov"`
	PopPermanent         int    `json:"pop_trvaly_pobyt"`
	PopElsewhereDomestic int    `json:"pop_inde_sr"`
	PopAbroad            int    `json:"pop_zahranicie"`
	PopTotal             int    `json:"pop_total"`
}

// Validate reports whether the record can be turned into a feature.
// pop_total is not cross-checked against the other counts; that is the
// data source's contract.
func (r PopulationRecord) Validate() error {
	if strings.TrimSpace(r.MicroAreaCode) == "" {
		return eris.Wrap(ErrMalformedRecord, "missing micro-area code")
	}
	if r.PopPermanent < 0 || r.PopElsewhereDomestic < 0 || r.PopAbroad < 0 || r.PopTotal < 0 {
		return eris.Wrapf(ErrMalformedRecord, "negative population count for %s", r.MicroAreaCode)
	}
	return nil
}
