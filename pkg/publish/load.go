package publish

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/PaulieB14/grc20-publisher/pkg/records"
)

// LoadDeeds reads the deed CSV and, when addressesPath is set, the address
// sidecar concurrently, then patches the addresses in. A missing sidecar
// file is not an error.
func LoadDeeds(ctx context.Context, deedsPath, addressesPath string) ([]records.Deed, error) {
	var (
		deeds     []records.Deed
		addresses map[string]string
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		deeds, err = records.LoadDeeds(deedsPath)
		return err
	})
	if addressesPath != "" {
		g.Go(func() error {
			if _, err := os.Stat(addressesPath); os.IsNotExist(err) {
				return nil
			}
			var err error
			addresses, err = records.LoadAddressMap(addressesPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records.ApplyAddresses(deeds, addresses), nil
}
