package gateway

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Text inputs for numeric fields serialize as a number or JSON null,
// never as an empty string. These helpers are the only path from form
// text to payload values.

func floatField(name, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("Errori di validazione: %s: valore numerico non valido", name)
	}
	return &v, nil
}

func intField(name, s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("Errori di validazione: %s: valore intero non valido", name)
	}
	return &v, nil
}

func dateField(name, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("Errori di validazione: %s: data non valida (AAAA-MM-GG)", name)
	}
	return &t, nil
}

// enumField rejects values outside a backend-defined closed set. Blank
// stays blank so callers can apply their default first.
func enumField(name, s string, allowed []string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, v := range allowed {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("Errori di validazione: %s: valore non ammesso (%s)", name, strings.Join(allowed, ", "))
}

// optText maps a blank optional text input to null.
func optText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// requireFields returns a validation error naming every blank required
// field, without touching the backend.
func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("Errori di validazione: campi obbligatori mancanti: %s", strings.Join(missing, ", "))
}
