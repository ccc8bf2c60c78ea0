package vehicle

import (
	"fmt"

	"github.com/dvla-io/dvla/vehicle/dvla"
	"github.com/thoas/go-funk"
)

// ensureUnique normalises the registration numbers and fails on duplicates
func ensureUnique(regs []string) ([]string, error) {
	res := make([]string, 0, len(regs))

	for _, reg := range regs {
		reg, err := dvla.Registration(reg)
		if err != nil {
			return nil, err
		}

		if funk.ContainsString(res, reg) {
			return nil, fmt.Errorf("duplicate vehicle: %s", reg)
		}

		res = append(res, reg)
	}

	return res, nil
}
