// Package vstp decodes the structured very-short-term-planning feed
// (spec.md §6's `VSTPCIFMsgV1` shape) and drives it through the same
// assembler/overlay pipeline as the bulk CIF file, tagging every train it
// produces as model.VeryShortTerm. Grounded on
// original_source/src/nr_importer.rs's NrJson* serde structs and
// read_vstp_entry/read_vstp_route/read_vstp_variable_train, field-decoded
// with package cif's decoders wherever the wire codes coincide with the
// fixed-width alphabet (they do for power/class/catering/reservations/
// operating characteristics/brand/train category).
package vstp

import (
	"encoding/json"
	"fmt"

	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

// TransactionType is the VSTP message's create/delete marker.
type TransactionType string

const (
	TransactionCreate TransactionType = "Create"
	TransactionDelete TransactionType = "Delete"
)

// Location is the structured feed's `schedule_location.location.tiploc`
// wrapper — it carries only a TIPLOC id, unlike the bulk file's inline
// column.
type Location struct {
	Tiploc struct {
		TiplocID string `json:"tiploc_id"`
	} `json:"tiploc"`
}

// ScheduleLocation is one stop within a schedule_segment.
type ScheduleLocation struct {
	ScheduledArrivalTime   string   `json:"scheduled_arrival_time"`
	ScheduledDepartureTime string   `json:"scheduled_departure_time"`
	ScheduledPassTime      string   `json:"scheduled_pass_time"`
	PublicArrivalTime      string   `json:"public_arrival_time"`
	PublicDepartureTime    string   `json:"public_departure_time"`
	CIFPlatform            string   `json:"CIF_platform"`
	CIFLine                string   `json:"CIF_line"`
	CIFPath                string   `json:"CIF_path"`
	CIFActivity            string   `json:"CIF_activity"`
	CIFEngineeringAllowance string  `json:"CIF_engineering_allowance"`
	CIFPathingAllowance    string   `json:"CIF_pathing_allowance"`
	CIFPerformanceAllowance string  `json:"CIF_performance_allowance"`
	Location               Location `json:"location"`
}

// ScheduleSegment is one continuous block of locations sharing a single
// descriptive VariableTrain (a change-en-route splits a schedule into more
// than one segment).
type ScheduleSegment struct {
	SignallingID               string             `json:"signalling_id"`
	ATOCCode                   string             `json:"atoc_code"`
	UICCode                    string             `json:"uic_code"`
	CIFTrainCategory           string             `json:"CIF_train_category"`
	CIFHeadcode                string             `json:"CIF_headcode"`
	CIFTrainServiceCode        string             `json:"CIF_train_service_code"`
	CIFPowerType               string             `json:"CIF_power_type"`
	CIFTimingLoad              string             `json:"CIF_timing_load"`
	CIFSpeed                   string             `json:"CIF_speed"`
	CIFOperatingCharacteristics string            `json:"CIF_operating_characteristics"`
	CIFTrainClass              string             `json:"CIF_train_class"`
	CIFSleepers                string             `json:"CIF_sleepers"`
	CIFReservations            string             `json:"CIF_reservations"`
	CIFCateringCode            string             `json:"CIF_catering_code"`
	CIFServiceBranding         string             `json:"CIF_service_branding"`
	ScheduleLocation           []ScheduleLocation `json:"schedule_location"`
}

// Schedule is the message's `schedule` object.
type Schedule struct {
	TransactionType    TransactionType   `json:"transaction_type"`
	CIFSTPIndicator    string            `json:"cif_stp_indicator"`
	CIFTrainUID        string            `json:"CIF_train_uid"`
	ScheduleStartDate  string            `json:"schedule_start_date"`
	ScheduleEndDate    string            `json:"schedule_end_date"`
	ScheduleDaysRuns   string            `json:"schedule_days_runs"`
	ApplicableTimetable string           `json:"applicable_timetable"`
	TrainStatus        string            `json:"train_status"`
	ScheduleSegment    []ScheduleSegment `json:"schedule_segment"`
}

// cifMsgV1 is the inner envelope carrying the schedule. Only the schedule
// is decoded; the envelope's transport metadata (classification/timestamp/
// sender) is ignored.
type cifMsgV1 struct {
	Schedule Schedule `json:"schedule"`
}

// Message is one decoded VSTPCIFMsgV1 envelope.
type Message struct {
	CIFMsgV1 cifMsgV1 `json:"VSTPCIFMsgV1"`
}

// Decode parses one structured-feed JSON message.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, railerr.NewStructuredError(railerr.KindFieldParse, "VSTPCIFMsgV1", fmt.Sprintf("invalid JSON: %s", err), err)
	}
	if len(msg.CIFMsgV1.Schedule.ScheduleSegment) == 0 {
		return nil, railerr.NewStructuredError(railerr.KindSemanticViolation, "schedule.schedule_segment", "message has no schedule segments", nil)
	}
	return &msg, nil
}
