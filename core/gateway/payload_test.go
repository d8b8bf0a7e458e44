package gateway

import (
	"strings"
	"testing"
	"time"
)

func TestFloatField(t *testing.T) {
	if v, err := floatField("latitude", ""); err != nil || v != nil {
		t.Fatalf("empty string must yield nil, got %v %v", v, err)
	}
	v, err := floatField("latitude", "45.46")
	if err != nil || v == nil || *v != 45.46 {
		t.Fatalf("parse failed: %v %v", v, err)
	}
	if _, err := floatField("latitude", "nord"); err == nil {
		t.Fatalf("expected parse error")
	} else if !strings.Contains(err.Error(), "latitude") {
		t.Fatalf("error must name the field: %v", err)
	}
}

func TestIntField(t *testing.T) {
	if v, err := intField("quantity", ""); err != nil || v != nil {
		t.Fatalf("empty string must yield nil, got %v %v", v, err)
	}
	v, err := intField("quantity", "42")
	if err != nil || v == nil || *v != 42 {
		t.Fatalf("parse failed: %v %v", v, err)
	}
	if _, err := intField("quantity", "12.5"); err == nil {
		t.Fatalf("expected parse error for non-integer")
	}
}

func TestDateField(t *testing.T) {
	if v, err := dateField("expiry_date", ""); err != nil || v != nil {
		t.Fatalf("empty string must yield nil, got %v %v", v, err)
	}
	v, err := dateField("expiry_date", "2026-12-31")
	if err != nil || v == nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !v.Equal(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", v)
	}
	if _, err := dateField("expiry_date", "31/12/2026"); err == nil {
		t.Fatalf("expected parse error for wrong layout")
	}
}

func TestOptText(t *testing.T) {
	if optText("") != nil {
		t.Fatalf("empty string must yield nil")
	}
	if p := optText("x"); p == nil || *p != "x" {
		t.Fatalf("non-empty string must yield pointer")
	}
}

func TestRequireFieldsSortsNames(t *testing.T) {
	err := requireFields(map[string]string{"title": "", "description": "", "event_type": "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "Errori di validazione: campi obbligatori mancanti: description, title"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
	if requireFields(map[string]string{"a": "1"}) != nil {
		t.Fatalf("complete fields must pass")
	}
}

func TestEnumField(t *testing.T) {
	allowed := []string{"bassa", "media", "alta", "critica"}
	if err := enumField("severity", "", allowed); err != nil {
		t.Fatalf("blank must pass: %v", err)
	}
	if err := enumField("severity", "alta", allowed); err != nil {
		t.Fatalf("known value must pass: %v", err)
	}
	err := enumField("severity", "estrema", allowed)
	if err == nil {
		t.Fatalf("unknown value must fail")
	}
	if !strings.Contains(err.Error(), "severity") || !strings.Contains(err.Error(), "bassa, media, alta, critica") {
		t.Fatalf("error must name the field and the allowed set, got %q", err.Error())
	}
}

func TestFormGuardSingleFlight(t *testing.T) {
	g := NewFormGuard()
	if !g.begin("create-event") {
		t.Fatalf("first begin must succeed")
	}
	if g.begin("create-event") {
		t.Fatalf("second begin on the same form must be rejected")
	}
	if !g.begin("create-log") {
		t.Fatalf("a different form must not be blocked")
	}
	if !g.Busy("create-event") {
		t.Fatalf("busy form not reported")
	}
	g.end("create-event")
	if !g.begin("create-event") {
		t.Fatalf("end must release the form")
	}
}
