package cacheconfig

import (
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
)

// Configure overlays the user's triples on the detected geometry and
// validates the result. Any triple that fails validation is fatal.
func Configure(user Caches, d Detector, logger common.Logger) (Caches, error) {
	if logger == nil {
		logger = common.NewNoOpLogger()
	}

	nDefined := 0
	for _, kind := range []cg.CacheKind{cg.I1, cg.D1, cg.L2} {
		if user.Get(kind).Defined() {
			nDefined++
		}
	}

	cfg := d.Detect(nDefined == 3)

	overlay := func(kind cg.CacheKind, u Triple, detected Triple) (Triple, error) {
		t := detected
		if u.Defined() {
			t = u
		}
		return t, Check(kind.String(), t)
	}

	var err error
	if cfg.I1, err = overlay(cg.I1, user.I1, cfg.I1); err != nil {
		return Caches{}, err
	}
	if cfg.D1, err = overlay(cg.D1, user.D1, cfg.D1); err != nil {
		return Caches{}, err
	}
	if cfg.L2, err = overlay(cg.L2, user.L2, cfg.L2); err != nil {
		return Caches{}, err
	}

	logger.Debug("Cache configuration used:")
	logger.Logf(common.SeverityDebug, "  I1: %s", cfg.I1)
	logger.Logf(common.SeverityDebug, "  D1: %s", cfg.D1)
	logger.Logf(common.SeverityDebug, "  L2: %s", cfg.L2)
	return cfg, nil
}
