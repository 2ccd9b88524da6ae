package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mediaforge/core/orchestrator"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status <generation-id>",
	Short: "Check a tracked generation and download it when finished",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		report, err := a.orch.SyncPending(cmd.Context(), orchestrator.SyncOptions{
			JobID:      id,
			Download:   true,
			OutputPath: statusOutput,
		})
		if err != nil {
			log.Fatalf("status check failed: %v", err)
		}

		job, err := a.repo.Get(id)
		if err != nil {
			log.Fatalf("load job: %v", err)
		}

		fmt.Printf("Job %s (%s via %s): %s\n", job.ID, job.ContentType, job.Provider, job.Status)
		if job.OutputPath != "" {
			fmt.Printf("Output: %s\n", job.OutputPath)
		}
		if report.Skipped > 0 {
			fmt.Println("The vendor could not be reached; try again later.")
		}
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "", "where to save the asset once completed")
	rootCmd.AddCommand(statusCmd)
}
