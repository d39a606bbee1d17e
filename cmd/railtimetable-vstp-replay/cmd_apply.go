package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/railtimetable/importer"
)

func newApplyCmd() *cobra.Command {
	var cifFlag string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Rebuild a schedule from a bulk CIF baseline plus every stored VSTP message",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			if cifFlag != "" {
				cfg.CIFFile = cifFlag
			}
			log, err := newLogger(cfg.LogLevel, os.Stderr)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			state := loadState(cfg, log)

			im := importer.New(importer.WithLogger(log))

			if cfg.CIFFile != "" {
				f, err := os.Open(cfg.CIFFile)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return err
				}
				defer f.Close()
				if _, err := im.ApplyCIF(f); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return err
				}
			}

			applied := 0
			for _, stored := range state.All() {
				data, err := json.Marshal(stored.Message)
				if err != nil {
					return fmt.Errorf("re-encoding snapshot %s: %w", stored.SnapshotID, err)
				}
				if _, err := im.ApplyVSTP(data); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "snapshot %s: %v\n", stored.SnapshotID, err)
					continue
				}
				applied++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d of %d stored message(s)\n", applied, len(state.All()))
			printScheduleSummary(cmd, im)
			return nil
		},
	}
	cmd.Flags().StringVar(&cifFlag, "cif", "", "Path to a bulk CIF baseline file, applied before replaying stored VSTP messages")
	return cmd
}

func printScheduleSummary(cmd *cobra.Command, im *importer.Importer) {
	bySource := map[string]int{}
	for _, trains := range im.Schedule.Trains {
		for _, t := range trains {
			if t.Source != nil {
				bySource[t.Source.String()]++
			} else {
				bySource["unknown"]++
			}
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Distinct train UIDs: %d\n", len(im.Schedule.Trains))

	keys := make([]string, 0, len(bySource))
	for k := range bySource {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", k, bySource[k])
	}
}
