package events

import (
	"testing"

	"djnic/internal/core/diff"
)

var (
	acme  = &Registrant{ID: 1, UID: "r-acme", Name: "ACME SA", LegalUID: "30-1"}
	juan  = &Registrant{ID: 2, UID: "r-juan", Name: "Juan Perez", LegalUID: "20-2"}
	dom   = DomainRef{ID: 10, Name: "ejemplo.com.ar", URL: DomainURL("d-10")}
	owned = DomainRef{ID: 10, Name: "ejemplo.com.ar", URL: DomainURL("d-10"), Registrant: acme}
)

func kinds(evs []Event, sk SubjectKind) map[Kind]int {
	out := map[Kind]int{}
	for _, e := range evs {
		if e.Subject.Kind == sk {
			out[e.Kind]++
		}
	}
	return out
}

func change(f, o, n string) diff.FieldChange { return diff.FieldChange{Field: f, Old: o, New: n} }

func TestDerive_Empty(t *testing.T) {
	if evs := Derive(Input{Domain: owned}); len(evs) != 0 {
		t.Fatalf("expected no events, got %d", len(evs))
	}
}

func TestDerive_DuplicateDropIsDeduplicated(t *testing.T) {
	in := Input{Domain: owned, Changes: []diff.FieldChange{
		change(diff.FieldStatus, diff.StatusUnavailable, diff.StatusAvailable),
		change(diff.FieldStatus, diff.StatusUnavailable, diff.StatusAvailable),
	}}
	for range 2 {
		evs := Derive(in)
		if got := kinds(evs, SubjectDomain)[Dropped]; got != 1 {
			t.Fatalf("domain dropped = %d", got)
		}
		if got := kinds(evs, SubjectRegistrant)[Dropped]; got != 1 {
			t.Fatalf("registrant dropped = %d", got)
		}
	}
}

func TestDerive_DNSOncePerSubject(t *testing.T) {
	evs := Derive(Input{Domain: owned, Changes: []diff.FieldChange{
		change("DNS1", "a", "x"), change("DNS2", "b", "y"), change("DNS3", "c", ""),
	}})
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if kinds(evs, SubjectDomain)[DNSChanged] != 1 || kinds(evs, SubjectRegistrant)[DNSChanged] != 1 {
		t.Fatalf("unexpected kinds %+v", evs)
	}
	if d := evs[0].Data["campo"]; d != "DNS1" {
		t.Fatalf("first DNS change should trigger, got %v", d)
	}
	if got := evs[1].Description(); got != "El dominio ejemplo.com.ar de ACME SA cambió DNS" {
		t.Fatalf("description %q", got)
	}
}

func TestDerive_NewDomainWithRegistrant(t *testing.T) {
	changes := []diff.FieldChange{
		change(diff.FieldStatus, diff.StatusAvailable, diff.StatusUnavailable),
		change(diff.FieldRegistrantLegalUID, "", "30-1"),
	}
	evs := Derive(Input{Domain: owned, Changes: changes, NewRegistrant: acme})

	dk := kinds(evs, SubjectDomain)
	if dk[Registered] != 1 || dk[RegistrantChanged] != 1 {
		t.Fatalf("domain kinds %v", dk)
	}
	if rk := kinds(evs, SubjectRegistrant); rk[Registered] != 1 || len(rk) != 1 {
		t.Fatalf("registrant kinds %v", rk)
	}

	var reg Event
	for _, e := range evs {
		if e.Subject.Kind == SubjectRegistrant {
			reg = e
		}
	}
	if reg.Subject.ID != acme.ID || reg.Description() != "ACME SA registró el dominio ejemplo.com.ar" {
		t.Fatalf("registrant event %+v", reg)
	}
	if reg.Data["url"] != "/registrante-r-acme" || reg.Data["domain_url"] != "/dominio-d-10" {
		t.Fatalf("urls %+v", reg.Data)
	}
}

func TestDerive_NewDomainWithoutRegistrant(t *testing.T) {
	evs := Derive(Input{Domain: dom, Changes: []diff.FieldChange{
		change(diff.FieldStatus, diff.StatusAvailable, diff.StatusUnavailable),
	}})
	if len(kinds(evs, SubjectRegistrant)) != 0 {
		t.Fatalf("expected no registrant events, got %+v", evs)
	}
	if len(evs) != 1 || evs[0].Description() != "El dominio ejemplo.com.ar fue registrado" {
		t.Fatalf("got %+v", evs)
	}
}

func TestDerive_RegistrantTransfer(t *testing.T) {
	current := DomainRef{ID: 10, Name: "ejemplo.com.ar", URL: DomainURL("d-10"), Registrant: juan}
	evs := Derive(Input{
		Domain:        current,
		Changes:       []diff.FieldChange{change(diff.FieldRegistrantLegalUID, "30-1", "20-2")},
		OldRegistrant: acme,
		NewRegistrant: juan,
	})
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	d := evs[0].Data
	if d["old_registrante_name"] != "ACME SA" || d["new_registrante_id"] != int64(2) || d["new_registrante_url"] != "/registrante-r-juan" {
		t.Fatalf("payload %+v", d)
	}
	if evs[1].Subject != (Subject{SubjectRegistrant, 1}) || evs[1].Kind != Dropped || evs[1].Description() != "ACME SA perdió el dominio ejemplo.com.ar" {
		t.Fatalf("old side %+v", evs[1])
	}
	if evs[2].Subject != (Subject{SubjectRegistrant, 2}) || evs[2].Kind != Registered || evs[2].Description() != "Juan Perez obtuvo el dominio ejemplo.com.ar" {
		t.Fatalf("new side %+v", evs[2])
	}
}

func TestDerive_UnresolvedRegistrantSide(t *testing.T) {
	evs := Derive(Input{
		Domain:        owned,
		Changes:       []diff.FieldChange{change(diff.FieldRegistrantLegalUID, "99-9", "30-1")},
		NewRegistrant: acme,
	})
	if len(evs) != 2 {
		t.Fatalf("expected domain + new registrant events, got %+v", evs)
	}
	if v, ok := evs[0].Data["old_registrante_id"]; !ok || v != nil {
		t.Fatalf("old side should be present and nil, got %v", v)
	}
}

func TestDerive_Renewal(t *testing.T) {
	evs := Derive(Input{Domain: owned, Changes: []diff.FieldChange{
		change(diff.FieldExpire, "2025-01-01 00:00:00", "2026-01-01 00:00:00"),
	}})
	if len(evs) != 2 || evs[0].Kind != Renewed || evs[1].Kind != Renewed {
		t.Fatalf("got %+v", evs)
	}
	if evs[0].Description() != "El dominio ejemplo.com.ar fue renovado hasta 2026-01-01 00:00:00" {
		t.Fatalf("domain description %q", evs[0].Description())
	}
	if evs[1].Description() != "ACME SA renovó el dominio ejemplo.com.ar" {
		t.Fatalf("registrant description %q", evs[1].Description())
	}
}

func TestDerive_BackwardExpiration(t *testing.T) {
	evs := Derive(Input{Domain: owned, Changes: []diff.FieldChange{
		change(diff.FieldExpire, "2026-01-01 00:00:00", "2025-06-01 00:00:00"),
	}})
	if len(evs) != 2 || evs[0].Kind != Renewed {
		t.Fatalf("got %+v", evs)
	}
	if evs[0].Description() != "El dominio ejemplo.com.ar cambió su fecha de expiración para atras (?) a 2025-06-01 00:00:00" {
		t.Fatalf("domain description %q", evs[0].Description())
	}
	if evs[1].Description() != "ACME SA cambió la fecha de expiración para atrás (?) del dominio ejemplo.com.ar" {
		t.Fatalf("registrant description %q", evs[1].Description())
	}
}

func TestDerive_ExpireNeedsBothSides(t *testing.T) {
	for _, c := range []diff.FieldChange{
		change(diff.FieldExpire, "", "2026-01-01 00:00:00"),
		change(diff.FieldExpire, "2026-01-01 00:00:00", ""),
	} {
		if evs := Derive(Input{Domain: owned, Changes: []diff.FieldChange{c}}); len(evs) != 0 {
			t.Fatalf("%+v produced %+v", c, evs)
		}
	}
}

func TestDerive_DropFallsBackToCurrentRegistrant(t *testing.T) {
	evs := Derive(Input{Domain: owned, Changes: []diff.FieldChange{
		change(diff.FieldStatus, diff.StatusUnavailable, diff.StatusAvailable),
	}})
	if len(evs) != 2 || evs[1].Subject.ID != acme.ID || evs[1].Description() != "El dominio ejemplo.com.ar de ACME SA cayó" {
		t.Fatalf("got %+v", evs)
	}
	if evs[0].Description() != "El dominio ejemplo.com.ar cayó y está disponible" {
		t.Fatalf("domain description %q", evs[0].Description())
	}
}

func TestDerive_DropPrefersOldRegistrant(t *testing.T) {
	evs := Derive(Input{
		Domain: dom,
		Changes: []diff.FieldChange{
			change(diff.FieldStatus, diff.StatusUnavailable, diff.StatusAvailable),
			change(diff.FieldRegistrantLegalUID, "20-2", ""),
		},
		OldRegistrant: juan,
	})
	rk := 0
	for _, e := range evs {
		if e.Subject.Kind == SubjectRegistrant {
			rk++
			if e.Subject.ID != juan.ID || e.Kind != Dropped {
				t.Fatalf("unexpected registrant event %+v", e)
			}
		}
	}
	if rk != 1 {
		t.Fatalf("expected the drop and the loss to collapse into one dropped event, got %d", rk)
	}
}

func TestRegistrantUIDs(t *testing.T) {
	o, n, ok := RegistrantUIDs([]diff.FieldChange{
		change(diff.FieldStatus, "a", "b"),
		change(diff.FieldRegistrantLegalUID, "1", "2"),
		change(diff.FieldRegistrantLegalUID, "3", "4"),
	})
	if !ok || o != "1" || n != "2" {
		t.Fatalf("got %q %q %v", o, n, ok)
	}
	if _, _, ok := RegistrantUIDs(nil); ok {
		t.Fatal("expected not found")
	}
}

func TestKindLabels(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() || k.Label() == string(k) {
			t.Fatalf("kind %s missing label", k)
		}
	}
	if Kind("nope").Valid() {
		t.Fatal("unknown kind reported valid")
	}
}
