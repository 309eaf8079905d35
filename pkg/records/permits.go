package records

import (
	"fmt"
	"io"
	"os"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// Permit CSV columns, as exported by the permitting portal.
const (
	ColRecordNumber = "Record Number"
	ColDescription  = "Description"
	ColAddress      = "Address"
	ColProjectName  = "Project Name"
	ColRecordType   = "Record Type"
	ColStatus       = "Status"
)

// LoadPermits reads a permit CSV export. Every non-blank row yields one Permit.
func LoadPermits(path string) ([]Permit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParsePermits(f, path)
}

// ParsePermits reads permit rows from r.
func ParsePermits(r io.Reader, name string) ([]Permit, error) {
	var permits []Permit
	err := parseCSV(r, name, []string{ColRecordNumber}, func(line int, rec map[string]string) error {
		p := Permit{
			RecordNumber: rec[ColRecordNumber],
			Description:  rec[ColDescription],
			Address:      rec[ColAddress],
			ProjectName:  rec[ColProjectName],
			RecordType:   rec[ColRecordType],
			Status:       rec[ColStatus],
		}
		if p.RecordNumber == "" {
			return fmt.Errorf("%w: %s line %d: empty %s", errors.ErrInvalidInput, name, line, ColRecordNumber)
		}
		permits = append(permits, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return permits, nil
}
