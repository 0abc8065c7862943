package bindtrim

import (
	"fmt"

	"github.com/refaktor/bindtrim/catalog"
	"github.com/refaktor/bindtrim/closure"
	"github.com/refaktor/bindtrim/logger"
	"github.com/refaktor/bindtrim/policy"
	"github.com/refaktor/bindtrim/scan"
)

// Config ties one analysis run together. Catalog and AppRoot are
// required; a nil Policy means [policy.Default] and a nil Logger
// discards all diagnostics.
type Config struct {
	// Root of the application's loadable code units.
	AppRoot string
	// The binding layer's API surface. Wrapped in a [catalog.Memo]
	// internally, so passing a raw backend is fine.
	Catalog catalog.Catalog
	Policy  *policy.Policy
	Logger  *logger.Logger
}

// FindRejections runs the full analysis pipeline: harvest identifiers
// from the application, compute the reachable-type/member fixpoint, and
// return the deterministic rejection stream for downstream build
// patchers.
func FindRejections(c *Config) ([]closure.Rejection, error) {
	if c.Catalog == nil {
		return nil, fmt.Errorf("no catalog configured")
	}
	pol := c.Policy
	if pol == nil {
		pol = policy.Default()
	}

	ids, err := scan.Dir(c.AppRoot, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("harvest %v: %w", c.AppRoot, err)
	}
	c.Logger.Infof("harvested %v identifiers from %v", len(ids), c.AppRoot)

	cat := catalog.NewMemo(c.Catalog)
	res, err := closure.Run(cat, pol, ids, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("reachability closure: %w", err)
	}
	c.Logger.Infof("%v useful types", len(res.Useful))

	return closure.Rejections(cat, pol, ids, res)
}
