// Package diff compares two snapshots of a domain's registry record.
//
// Every value is compared as a string so records collected under different
// source formats stay comparable. Field order is fixed and drives display only.
package diff

import (
	"fmt"
	"time"

	ptime "djnic/internal/platform/time"
)

// Status values of a domain as reported by the registry
const (
	StatusAvailable   = "disponible"
	StatusUnavailable = "no disponible"
)

// Field names, in emission order
const (
	FieldStatus             = "estado"
	FieldRegistered         = "dominio_registered"
	FieldChanged            = "dominio_changed"
	FieldExpire             = "dominio_expire"
	FieldRegistrantName     = "registrant_name"
	FieldRegistrantLegalUID = "registrant_legal_uid"
	FieldRegistrantCreated  = "registrant_created"
	FieldRegistrantChanged  = "registrant_changed"
	DNSPrefix               = "DNS"
)

// DateLayout is how every date is rendered before comparison
const DateLayout = time.DateTime

// RegistrantSnapshot is the holder part of a snapshot
type RegistrantSnapshot struct {
	Name     string     `json:"name"`
	LegalUID string     `json:"legal_uid"`
	Created  *time.Time `json:"created,omitempty"`
	Changed  *time.Time `json:"changed,omitempty"`
}

// Snapshot is one observation of a domain
type Snapshot struct {
	Status     string              `json:"status"`
	Registered *time.Time          `json:"registered,omitempty"`
	Changed    *time.Time          `json:"changed,omitempty"`
	Expire     *time.Time          `json:"expire,omitempty"`
	Registrant *RegistrantSnapshot `json:"registrant,omitempty"`
	DNS        []string            `json:"dns,omitempty"`
}

// Initial is the state a never seen domain is diffed from
func Initial() Snapshot { return Snapshot{Status: StatusAvailable} }

// FieldChange is one (field, old, new) triple
type FieldChange struct {
	Field string `json:"campo"`
	Old   string `json:"anterior"`
	New   string `json:"nuevo"`
}

// Record groups the changes observed in one visit
type Record struct {
	DomainID    int64
	At          time.Time
	HaveChanges bool
	Fields      []FieldChange
}

// NewRecord builds the record for a visit; an empty diff is a confirmatory visit
func NewRecord(domainID int64, at time.Time, changes []FieldChange) Record {
	return Record{DomainID: domainID, At: at, HaveChanges: len(changes) > 0, Fields: changes}
}

// Compute returns the changes from prev to next with dates rendered in loc
func Compute(prev, next Snapshot, loc *time.Location) []FieldChange {
	date := func(t *time.Time) string { return ptime.Format(t, loc, DateLayout) }
	a, b := flatten(prev, date), flatten(next, date)

	var out []FieldChange
	for i := range a {
		if a[i].value != b[i].value {
			out = append(out, FieldChange{Field: a[i].field, Old: a[i].value, New: b[i].value})
		}
	}

	n := max(len(prev.DNS), len(next.DNS))
	for i := range n {
		o, v := at(prev.DNS, i), at(next.DNS, i)
		if o != v {
			out = append(out, FieldChange{Field: fmt.Sprintf("%s%d", DNSPrefix, i+1), Old: o, New: v})
		}
	}
	return out
}

type pair struct{ field, value string }

func flatten(s Snapshot, date func(*time.Time) string) []pair {
	r := s.Registrant
	if r == nil {
		r = &RegistrantSnapshot{}
	}
	return []pair{
		{FieldStatus, s.Status},
		{FieldRegistered, date(s.Registered)},
		{FieldChanged, date(s.Changed)},
		{FieldExpire, date(s.Expire)},
		{FieldRegistrantName, r.Name},
		{FieldRegistrantLegalUID, r.LegalUID},
		{FieldRegistrantCreated, date(r.Created)},
		{FieldRegistrantChanged, date(r.Changed)},
	}
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
