package vstp

import (
	"github.com/theoremus-urban-solutions/railtimetable/assembler"
)

// Apply drives a decoded Plan through an Assembler exactly as a run of
// BS/BX/LO/LI/LT/CR bulk-file records would, tagging the resulting train
// VeryShortTerm by way of the assembler's STPSource field (the caller is
// expected to have set it; Apply does not touch it itself, since a shared
// Assembler may process both bulk and VSTP input between Resets).
func Apply(a *assembler.Assembler, plan *Plan) error {
	if err := a.ApplyBasicSchedule(plan.BasicSchedule, 0); err != nil {
		return err
	}
	for _, step := range plan.Steps {
		if step.ChangeEnRoute != nil {
			if err := a.ApplyChangeEnRoute(*step.ChangeEnRoute, 0); err != nil {
				return err
			}
		}
		if err := a.ApplyLocation(step.Location, 0); err != nil {
			return err
		}
	}
	return nil
}
