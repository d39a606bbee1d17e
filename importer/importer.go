// Package importer is the top-level driver wiring components C1-C9
// together: it owns the schedule, the location registry (C3), the overlay
// engine (C5/C6/C7/C8/C9), and the train assembler (C4), and exposes one
// entry point per supported feed — ApplyCIF for the bulk fixed-width file,
// ApplyVSTP for one structured message at a time. Grounded on the
// teacher's cmd/converter staged-pipeline wiring, restructured as a
// reusable struct (the teacher wires everything inline in main) since this
// module needs the same wiring from two different CLIs.
package importer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/railtimetable/assembler"
	"github.com/theoremus-urban-solutions/railtimetable/cif"
	"github.com/theoremus-urban-solutions/railtimetable/model"
	"github.com/theoremus-urban-solutions/railtimetable/overlay"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
	"github.com/theoremus-urban-solutions/railtimetable/registry"
	"github.com/theoremus-urban-solutions/railtimetable/vstp"
)

// Option configures an Importer at construction time.
type Option func(*Importer)

// WithLogger overrides the default no-op zerolog.Logger.
func WithLogger(log zerolog.Logger) Option {
	return func(im *Importer) { im.log = log }
}

// Importer wires one in-memory schedule to both supported feeds.
type Importer struct {
	Schedule  *model.Schedule
	Locations *registry.Locations
	Overlay   *overlay.Engine
	Assembler *assembler.Assembler

	log zerolog.Logger
}

// New builds an Importer over a fresh, empty schedule.
func New(opts ...Option) *Importer {
	im := &Importer{
		Schedule:  &model.Schedule{Trains: make(map[string][]*model.Train)},
		Locations: registry.New(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	im.Overlay = overlay.NewEngine(im.Schedule, im.log)
	im.Assembler = assembler.New(im.Overlay)
	return im
}

// ApplyCIF streams one bulk CIF file through the full pipeline: TIPLOC
// records maintain the location registry (C3), AA records go straight to
// the overlay engine's association handling (C6/C7), and BS/BX/LO/LI/
// LT/CR drive the assembler (C4). A ZZ sentinel (or, failing that,
// end-of-file) triggers the finaliser (C9). Returns on the first fatal
// decode or semantic error; non-fatal anomalies accumulate in the
// returned Result.
func (im *Importer) ApplyCIF(r io.Reader) (*railerr.Result, error) {
	result := railerr.NewResult()
	im.Assembler.STPSource = model.ShortTerm
	im.Assembler.Reset()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	finalised := false
	for scanner.Scan() {
		lineNo++
		rec, err := cif.ParseLine(scanner.Text(), lineNo)
		if err != nil {
			return result, err
		}
		if rec == nil {
			continue
		}
		if err := im.applyBulkRecord(rec, lineNo); err != nil {
			return result, err
		}
		if _, ok := rec.(cif.FinaliseRecord); ok {
			if err := im.Overlay.Finalise(result); err != nil {
				return result, err
			}
			finalised = true
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("importer: reading bulk file: %w", err)
	}
	if !finalised {
		im.log.Warn().Msg("bulk file ended without a ZZ sentinel; finalising anyway")
		if err := im.Overlay.Finalise(result); err != nil {
			return result, err
		}
	}
	result.Finalize()
	return result, nil
}

func (im *Importer) applyBulkRecord(rec cif.Record, lineNo int) error {
	switch r := rec.(type) {
	case cif.HeaderRecord:
		im.log.Info().Str("provider", r.ProviderID).Bool("full", r.Full).Msg("bulk file header")
		return nil
	case cif.TiplocRecord:
		return im.applyTiploc(r)
	case cif.AssociationRecord:
		return im.Overlay.ApplyAssociation(r, sourceFor(r.IsSTP, model.ShortTerm))
	case cif.BasicScheduleRecord:
		return im.Assembler.ApplyBasicSchedule(r, lineNo)
	case cif.ExtendedScheduleRecord:
		return im.Assembler.ApplyExtendedSchedule(r, lineNo)
	case cif.LocationRecord:
		return im.Assembler.ApplyLocation(r, lineNo)
	case cif.ChangeEnRouteRecord:
		return im.Assembler.ApplyChangeEnRoute(r, lineNo)
	case cif.FinaliseRecord:
		return nil
	default:
		return fmt.Errorf("importer: unhandled record type %T", rec)
	}
}

// sourceFor mirrors assembler.Assembler.sourceFor for AA records, which
// the assembler never sees directly: a non-STP association is always
// LongTerm, an STP one takes the feed's overlay source.
func sourceFor(isSTP bool, overlaySource model.TrainSource) model.TrainSource {
	if isSTP {
		return overlaySource
	}
	return model.LongTerm
}

func (im *Importer) applyTiploc(rec cif.TiplocRecord) error {
	loc := &model.Location{ID: rec.ID, Name: rec.Name, PublicID: rec.PublicID}
	switch rec.Op {
	case model.Insert:
		im.Locations.Insert(loc)
	case model.Amend:
		return im.Locations.Amend(loc)
	case model.Delete:
		im.Locations.Delete(rec.ID)
	}
	return nil
}

// ApplyVSTP decodes and applies one structured VSTP message, tagging the
// resulting train VeryShortTerm. A VSTP message is a complete unit of
// work in itself — there is no multi-message "run" the way a bulk file
// is one run of many lines — so Finalise is called after every message,
// settling any pending association or orphan it created or resolved
// immediately rather than waiting for a sentinel this feed never sends.
func (im *Importer) ApplyVSTP(data []byte) (*railerr.Result, error) {
	result := railerr.NewResult()
	im.Assembler.STPSource = model.VeryShortTerm
	im.Assembler.Reset()

	msg, err := vstp.Decode(data)
	if err != nil {
		return result, err
	}
	plan, err := vstp.ToPlan(msg)
	if err != nil {
		return result, err
	}
	if err := vstp.Apply(im.Assembler, plan); err != nil {
		return result, err
	}
	if err := im.Overlay.Finalise(result); err != nil {
		return result, err
	}
	result.Finalize()
	return result, nil
}
