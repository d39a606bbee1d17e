package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type inspectRow struct {
	SnapshotID      string `json:"snapshot_id"`
	TrainUID        string `json:"train_uid"`
	TransactionType string `json:"transaction_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TrainStatus     string `json:"train_status"`
}

func newInspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the VSTP messages currently held in persisted state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			log, err := newLogger(cfg.LogLevel, os.Stderr)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			state := loadState(cfg, log)

			rows := make([]inspectRow, 0, len(state.All()))
			for _, stored := range state.All() {
				sched := stored.Message.CIFMsgV1.Schedule
				rows = append(rows, inspectRow{
					SnapshotID:      stored.SnapshotID,
					TrainUID:        sched.CIFTrainUID,
					TransactionType: string(sched.TransactionType),
					StartDate:       sched.ScheduleStartDate,
					EndDate:         sched.ScheduleEndDate,
					TrainStatus:     sched.TrainStatus,
				})
			}

			if asJSON || cfg.Output == "json" {
				return writeJSON(cmd, rows)
			}
			return writeTable(cmd, rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON instead of a table")
	return cmd
}

func writeJSON(cmd *cobra.Command, rows []inspectRow) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeTable(cmd *cobra.Command, rows []inspectRow) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SNAPSHOT\tTRAIN UID\tTRANSACTION\tSTART\tEND\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.SnapshotID, r.TrainUID, r.TransactionType, r.StartDate, r.EndDate, r.TrainStatus)
	}
	return w.Flush()
}
