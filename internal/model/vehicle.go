package model

import (
	"net/url"
	"strings"
)

// VehicleRecord is one logbook entry in the backing spreadsheet. The JSON
// field names match the gateway's wire format exactly; RowIndex is the
// opaque row locator used for updates and is never shown to users.
type VehicleRecord struct {
	RowIndex              string `json:"rowIndex"`
	LogbookNumber         string `json:"logbookNumber"`
	OwnerName             string `json:"ownerName"`
	OwnerPhone            string `json:"ownerPhone"`
	OwnerMembershipNumber string `json:"ownerMembershipNumber"`
	Year                  string `json:"year"`
	MakeModel             string `json:"makeModel"`
	RegoNumber            string `json:"regoNumber"`
	RegoState             string `json:"regoState"`
	VIN                   string `json:"vin"`
	EngineNumber          string `json:"engineNumber"`
	EngineCylinders       string `json:"engineCylinders"`
	EngineCapacity        string `json:"engineCapacity"`
	Turbo                 string `json:"turbo"` // "Y" or "N" in the sheet
	Class                 string `json:"class"`
	Colour                string `json:"colour"`
}

// QueryValues returns the record's editable fields as gateway query
// parameters, keyed by the sheet's column names. RowIndex is included
// because updates address rows by locator.
func (v VehicleRecord) QueryValues() url.Values {
	return url.Values{
		"rowIndex":              {v.RowIndex},
		"logbookNumber":         {v.LogbookNumber},
		"ownerName":             {v.OwnerName},
		"ownerPhone":            {v.OwnerPhone},
		"ownerMembershipNumber": {v.OwnerMembershipNumber},
		"year":                  {v.Year},
		"makeModel":             {v.MakeModel},
		"regoNumber":            {v.RegoNumber},
		"regoState":             {v.RegoState},
		"vin":                   {v.VIN},
		"engineNumber":          {v.EngineNumber},
		"engineCylinders":       {v.EngineCylinders},
		"engineCapacity":        {v.EngineCapacity},
		"turbo":                 {v.Turbo},
		"class":                 {v.Class},
		"colour":                {v.Colour},
	}
}

// Criteria is a vehicle search filter. Each non-empty field is matched by the
// gateway as a case-insensitive substring; fields combine with logical AND.
type Criteria struct {
	LogbookNumber string `json:"logbookNumber"`
	OwnerName     string `json:"ownerName"`
	RegoNumber    string `json:"regoNumber"`
}

// Trim returns a copy with surrounding whitespace removed from every field.
// Criteria are always trimmed before emptiness checks and before hitting
// the wire.
func (c Criteria) Trim() Criteria {
	return Criteria{
		LogbookNumber: strings.TrimSpace(c.LogbookNumber),
		OwnerName:     strings.TrimSpace(c.OwnerName),
		RegoNumber:    strings.TrimSpace(c.RegoNumber),
	}
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return c.LogbookNumber == "" && c.OwnerName == "" && c.RegoNumber == ""
}
