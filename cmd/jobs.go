package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mediaforge/core/orchestrator"
	"mediaforge/model"
	"mediaforge/repository"
)

var (
	jobsStatus   string
	jobsProvider string
	jobsLimit    int

	syncJobID    string
	syncDownload bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List tracked generation jobs",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		filter := repository.ListFilter{
			Provider: jobsProvider,
			Limit:    jobsLimit,
		}
		if jobsStatus != "" {
			status, ok := model.ParseJobStatus(jobsStatus)
			if !ok {
				log.Fatalf("unknown status %q (want queued, processing, completed, failed or downloaded)", jobsStatus)
			}
			filter.Status = status
		}

		jobs, err := a.repo.List(filter)
		if err != nil {
			log.Fatalf("list jobs: %v", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs tracked.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tPROVIDER\tSTATUS\tCREATED\tPROMPT")
		for _, job := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				job.ID,
				job.ContentType,
				job.Provider,
				job.Status,
				job.CreatedAt.Format("2006-01-02 15:04"),
				truncatePrompt(job.Prompt, 48))
		}
		w.Flush()
	},
}

var jobsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate job statistics",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		stats, err := a.repo.Stats()
		if err != nil {
			log.Fatalf("compute stats: %v", err)
		}

		fmt.Printf("Total jobs: %d (last 24h: %d)\n", stats.Total, stats.Recent24h)
		if len(stats.ByStatus) > 0 {
			fmt.Println("\nBy status:")
			for _, status := range []model.JobStatus{
				model.StatusQueued, model.StatusProcessing,
				model.StatusCompleted, model.StatusFailed, model.StatusDownloaded,
			} {
				if n, ok := stats.ByStatus[status]; ok {
					fmt.Printf("  %-12s %d\n", status, n)
				}
			}
		}
		if len(stats.ByProvider) > 0 {
			fmt.Println("\nBy provider:")
			for provider, n := range stats.ByProvider {
				fmt.Printf("  %-12s %d\n", provider, n)
			}
		}
		if len(stats.ByType) > 0 {
			fmt.Println("\nBy type:")
			for contentType, n := range stats.ByType {
				fmt.Printf("  %-12s %d\n", contentType, n)
			}
		}
	},
}

var jobsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-check in-flight jobs against their vendors",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		report, err := a.orch.SyncPending(cmd.Context(), orchestrator.SyncOptions{
			JobID:    syncJobID,
			Download: syncDownload,
		})
		if err != nil {
			log.Fatalf("sync failed: %v", err)
		}

		fmt.Printf("Checked %d job(s): %d completed, %d downloaded, %d failed, %d skipped\n",
			report.Checked, report.Completed, report.Downloaded, report.Failed, report.Skipped)
	},
}

func truncatePrompt(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by status")
	jobsCmd.Flags().StringVar(&jobsProvider, "provider", "", "filter by provider")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "maximum number of jobs to show")

	jobsSyncCmd.Flags().StringVar(&syncJobID, "id", "", "sync a single job by id")
	jobsSyncCmd.Flags().BoolVar(&syncDownload, "download", false, "download assets for completed jobs")

	jobsCmd.AddCommand(jobsStatsCmd)
	jobsCmd.AddCommand(jobsSyncCmd)
	rootCmd.AddCommand(jobsCmd)
}
