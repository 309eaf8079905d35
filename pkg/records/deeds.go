package records

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// Deed CSV columns.
const (
	ColInstrumentNumber   = "InstrumentNumber"
	ColDirectName         = "DirectName"
	ColIndirectName       = "IndirectName"
	ColRecordDate         = "RecordDate"
	ColDocTypeDescription = "DocTypeDescription"
	ColBookType           = "BookType"
	ColBookPage           = "BookPage"
	ColLegalDescription   = "LegalDescription"
	ColComments           = "Comments"
	ColPropertyAddress    = "PropertyAddress"
)

// LoadDeeds reads a deed CSV export. Every non-blank row yields one Deed.
func LoadDeeds(path string) ([]Deed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParseDeeds(f, path)
}

// ParseDeeds reads deed rows from r. name is used in error messages.
func ParseDeeds(r io.Reader, name string) ([]Deed, error) {
	var deeds []Deed
	err := parseCSV(r, name, []string{ColInstrumentNumber}, func(line int, rec map[string]string) error {
		d := Deed{
			InstrumentNumber:   rec[ColInstrumentNumber],
			DirectName:         rec[ColDirectName],
			IndirectName:       rec[ColIndirectName],
			RecordDate:         rec[ColRecordDate],
			DocTypeDescription: rec[ColDocTypeDescription],
			BookType:           rec[ColBookType],
			BookPage:           rec[ColBookPage],
			LegalDescription:   firstOf(rec, ColLegalDescription, ColComments),
			PropertyAddress:    rec[ColPropertyAddress],
		}
		if d.InstrumentNumber == "" {
			return fmt.Errorf("%w: %s line %d: empty %s", errors.ErrInvalidInput, name, line, ColInstrumentNumber)
		}
		deeds = append(deeds, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deeds, nil
}

// LoadAddressMap reads the instrument number -> property address sidecar.
func LoadAddressMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	addresses := make(map[string]string)
	if err := json.Unmarshal(data, &addresses); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", errors.ErrInvalidInput, path, err)
	}
	return addresses, nil
}

// ApplyAddresses returns a copy of deeds with PropertyAddress filled in from
// addresses wherever the row did not already carry one.
func ApplyAddresses(deeds []Deed, addresses map[string]string) []Deed {
	out := make([]Deed, len(deeds))
	for i, d := range deeds {
		if d.PropertyAddress == "" {
			if addr, ok := addresses[d.InstrumentNumber]; ok {
				d.PropertyAddress = addr
			}
		}
		out[i] = d
	}
	return out
}
