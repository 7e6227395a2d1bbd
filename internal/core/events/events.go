// Package events derives domain and registrant events from one diff batch.
//
// Derive is pure. Each subject carries its own set of kinds emitted so far,
// so a kind fires at most once per subject per batch.
package events

import (
	"strings"

	"djnic/internal/core/diff"
)

// Kind of a semantic occurrence
type Kind string

// Event kinds
const (
	Registered        Kind = "registered"
	Renewed           Kind = "renewed"
	Expired           Kind = "expired"
	Dropped           Kind = "dropped"
	DNSChanged        Kind = "dns_changed"
	RegistrantChanged Kind = "registrant_changed"
)

// Kinds lists every kind in display order
var Kinds = []Kind{Registered, Renewed, Expired, Dropped, DNSChanged, RegistrantChanged}

var labels = map[Kind]string{
	Registered:        "Dominio Registrado",
	Renewed:           "Dominio Renovado",
	Expired:           "Dominio Expirado",
	Dropped:           "Dominio Caido",
	DNSChanged:        "DNS Cambiado",
	RegistrantChanged: "Registrante Cambiado",
}

// Label is the human name of k
func (k Kind) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	_, ok := labels[k]
	return ok
}

// SubjectKind discriminates what an event is about
type SubjectKind string

// Subject kinds
const (
	SubjectDomain     SubjectKind = "domain"
	SubjectRegistrant SubjectKind = "registrant"
)

// Valid reports whether s is a known subject kind
func (s SubjectKind) Valid() bool { return s == SubjectDomain || s == SubjectRegistrant }

// Subject is a domain or a registrant by id
type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   int64       `json:"id"`
}

// Registrant is a resolved holder
type Registrant struct {
	ID       int64
	UID      string
	Name     string
	LegalUID string
}

// URL is the public path of r
func (r Registrant) URL() string { return RegistrantURL(r.UID) }

// DomainRef is the domain a batch belongs to, with its current registrant
type DomainRef struct {
	ID         int64
	Name       string
	URL        string
	Registrant *Registrant
}

// DomainURL is the public path of a domain
func DomainURL(uid string) string { return "/dominio-" + uid }

// RegistrantURL is the public path of a registrant
func RegistrantURL(uid string) string { return "/registrante-" + uid }

// Input is one diff batch with the registrants resolved around it
type Input struct {
	Domain        DomainRef
	Changes       []diff.FieldChange
	OldRegistrant *Registrant
	NewRegistrant *Registrant
}

// Event is a derived occurrence, not yet persisted
type Event struct {
	Kind    Kind           `json:"kind"`
	Subject Subject        `json:"subject"`
	Data    map[string]any `json:"data"`
}

// Description returns the human text stored in Data
func (e Event) Description() string {
	s, _ := e.Data["description"].(string)
	return s
}

// RegistrantUIDs returns both sides of the first registrant_legal_uid change
func RegistrantUIDs(changes []diff.FieldChange) (oldUID, newUID string, found bool) {
	for _, c := range changes {
		if c.Field == diff.FieldRegistrantLegalUID {
			return c.Old, c.New, true
		}
	}
	return "", "", false
}

type emitted map[Kind]bool

// Derive returns the domain events followed by the registrant events
func Derive(in Input) []Event {
	if len(in.Changes) == 0 {
		return nil
	}
	out := domainEvents(in, emitted{})
	return append(out, registrantEvents(in, map[int64]emitted{})...)
}

func dropped(c diff.FieldChange) bool {
	return c.Field == diff.FieldStatus && c.Old == diff.StatusUnavailable && c.New == diff.StatusAvailable
}

func registered(c diff.FieldChange) bool {
	return c.Field == diff.FieldStatus && c.Old == diff.StatusAvailable && c.New == diff.StatusUnavailable
}

func expireMoved(c diff.FieldChange) bool {
	return c.Field == diff.FieldExpire && c.Old != "" && c.New != ""
}

func forward(c diff.FieldChange) bool { return c.New > c.Old }

func isDNS(c diff.FieldChange) bool { return strings.HasPrefix(c.Field, diff.DNSPrefix) }

func domainEvents(in Input, seen emitted) []Event {
	d := in.Domain
	var out []Event
	for _, c := range in.Changes {
		var (
			kind Kind
			desc string
			data = map[string]any{"domain": d.Name, "url": d.URL, "campo": c.Field, "anterior": c.Old, "nuevo": c.New}
		)
		switch {
		case dropped(c):
			kind, desc = Dropped, "El dominio "+d.Name+" cayó y está disponible"
		case registered(c):
			kind, desc = Registered, "El dominio "+d.Name+" fue registrado"
		case c.Field == diff.FieldRegistrantLegalUID:
			kind, desc = RegistrantChanged, "El dominio "+d.Name+" cambió de registrante"
			registrantSide(data, "old_registrante", in.OldRegistrant)
			registrantSide(data, "new_registrante", in.NewRegistrant)
		case expireMoved(c) && forward(c):
			kind, desc = Renewed, "El dominio "+d.Name+" fue renovado hasta "+c.New
		case expireMoved(c):
			kind, desc = Renewed, "El dominio "+d.Name+" cambió su fecha de expiración para atras (?) a "+c.New
		case isDNS(c):
			kind, desc = DNSChanged, "El dominio "+d.Name+" cambió sus DNS"
		}
		if kind == "" || seen[kind] {
			continue
		}
		seen[kind] = true
		data["description"] = desc
		out = append(out, Event{Kind: kind, Subject: Subject{SubjectDomain, d.ID}, Data: data})
	}
	return out
}

func registrantSide(data map[string]any, prefix string, r *Registrant) {
	if r == nil {
		data[prefix+"_id"], data[prefix+"_name"], data[prefix+"_url"] = nil, nil, nil
		return
	}
	data[prefix+"_id"], data[prefix+"_name"], data[prefix+"_url"] = r.ID, r.Name, r.URL()
}

func registrantEvents(in Input, seen map[int64]emitted) []Event {
	d := in.Domain
	current := d.Registrant
	var out []Event

	emit := func(r *Registrant, kind Kind, desc string) {
		if r == nil {
			return
		}
		set := seen[r.ID]
		if set == nil {
			set = emitted{}
			seen[r.ID] = set
		}
		if set[kind] {
			return
		}
		set[kind] = true
		out = append(out, Event{
			Kind:    kind,
			Subject: Subject{SubjectRegistrant, r.ID},
			Data: map[string]any{
				"domain":      d.Name,
				"url":         r.URL(),
				"domain_url":  d.URL,
				"description": desc,
			},
		})
	}

	for _, c := range in.Changes {
		switch {
		case dropped(c):
			if r := firstOf(in.OldRegistrant, current); r != nil {
				emit(r, Dropped, "El dominio "+d.Name+" de "+r.Name+" cayó")
			}
		case registered(c):
			if r := firstOf(in.NewRegistrant, current); r != nil {
				emit(r, Registered, r.Name+" registró el dominio "+d.Name)
			}
		case c.Field == diff.FieldRegistrantLegalUID:
			if r := in.OldRegistrant; r != nil {
				emit(r, Dropped, r.Name+" perdió el dominio "+d.Name)
			}
			if r := in.NewRegistrant; r != nil {
				emit(r, Registered, r.Name+" obtuvo el dominio "+d.Name)
			}
		case expireMoved(c) && current != nil && forward(c):
			emit(current, Renewed, current.Name+" renovó el dominio "+d.Name)
		case expireMoved(c) && current != nil:
			emit(current, Renewed, current.Name+" cambió la fecha de expiración para atrás (?) del dominio "+d.Name)
		case isDNS(c) && current != nil:
			emit(current, DNSChanged, "El dominio "+d.Name+" de "+current.Name+" cambió DNS")
		}
	}
	return out
}

func firstOf(rs ...*Registrant) *Registrant {
	for _, r := range rs {
		if r != nil {
			return r
		}
	}
	return nil
}
