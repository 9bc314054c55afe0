package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Airlines maps two-letter carrier codes to display names.
type Airlines struct {
	byCode map[string]string
}

// LoadAirlines reads name,iata rows after a header line. Rows without a code
// are ignored.
func LoadAirlines(r io.Reader) (*Airlines, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("refdata: airlines header: %w", err)
	}
	a := &Airlines{byCode: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("refdata: airlines: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(rec[1]))
		name := strings.TrimSpace(rec[0])
		if code == "" || name == "" {
			continue
		}
		a.byCode[code] = name
	}
	return a, nil
}

func LoadAirlinesFile(path string) (*Airlines, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadAirlines(f)
}

func (a *Airlines) Len() int {
	if a == nil {
		return 0
	}
	return len(a.byCode)
}

// Name returns the carrier's name, or code itself when it is not listed.
// A nil table names nothing.
func (a *Airlines) Name(code string) string {
	if a == nil {
		return code
	}
	if n, ok := a.byCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return n
	}
	return code
}
