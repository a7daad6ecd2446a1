package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/ntrp-rating-service/internal/app/ratings"
	"github.com/preston-bernstein/ntrp-rating-service/internal/config"
	"github.com/preston-bernstein/ntrp-rating-service/internal/metrics"
)

// resolveOutput is the --json rendering of one lookup.
type resolveOutput struct {
	Ref       string `json:"ref"`
	PlayerID  string `json:"playerId,omitempty"`
	Status    string `json:"status"`
	URL       string `json:"url,omitempty"`
	Rating    string `json:"rating,omitempty"`
	Display   string `json:"display"`
	Probes    int    `json:"probes"`
	FromCache bool   `json:"fromCache,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var recordDir, replayDir string

	cmd := &cobra.Command{
		Use:   "resolve <id|link>...",
		Short: "Resolve roster player IDs or links to ratings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if recordDir != "" {
				cfg.Fetch.RecordDir = recordDir
			}
			if replayDir != "" {
				cfg.Fetch.ReplayDir = replayDir
			}
			logger := ctx.logger()

			rt, err := ratings.NewRuntime(cmd.Context(), cfg, logger, metrics.NewRecorder(), ctx.opts)
			if err != nil {
				return fmt.Errorf("start runtime: %w", err)
			}
			defer func() { _ = rt.Close(cmd.Context()) }()

			results := rt.Service.ResolveMany(cmd.Context(), args)

			failed := 0
			outputs := make([]resolveOutput, 0, len(results))
			for _, res := range results {
				out := toResolveOutput(res)
				if res.Err != nil {
					failed++
				}
				outputs = append(outputs, out)
			}

			if asJSON {
				if err := writeJSON(cmd, outputs); err != nil {
					return err
				}
			} else {
				for _, out := range outputs {
					printResolveLine(cmd, out)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d lookups failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().StringVar(&recordDir, "record", "", "Save every fetched page under this directory")
	cmd.Flags().StringVar(&replayDir, "replay", "", "Serve pages saved by --record instead of fetching")
	return cmd
}

func toResolveOutput(res ratings.Result) resolveOutput {
	out := resolveOutput{
		Ref:     res.Ref,
		Display: res.Resolution.Display(),
	}
	if res.Err != nil {
		out.Status = statusFailed
		out.Error = res.Err.Error()
		return out
	}
	out.PlayerID = res.Resolution.PlayerID
	out.Status = string(res.Resolution.Outcome)
	out.URL = res.Resolution.Record.URL
	out.Rating = res.Resolution.Record.Rating
	out.Probes = res.Resolution.Probes
	out.FromCache = res.Resolution.FromCache
	return out
}

func printResolveLine(cmd *cobra.Command, out resolveOutput) {
	w := cmd.OutOrStdout()
	switch {
	case out.Error != "":
		fmt.Fprintf(w, "%s\t%s\t%s\terror: %s\n", out.Ref, out.Display, out.Status, out.Error)
	case out.URL != "":
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", out.PlayerID, out.Display, out.Status, out.URL)
	default:
		fmt.Fprintf(w, "%s\t%s\t%s\n", out.PlayerID, out.Display, out.Status)
	}
}
