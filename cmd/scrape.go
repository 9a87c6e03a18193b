package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rayanlekkat/brio-lead-scraper/internal/job"
)

const jobPollInterval = 500 * time.Millisecond

func newScrapeCommand() *cobra.Command {
	var (
		campaignID string
		keyword    string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run a one-shot scrape job for a campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), campaignID, keyword, limit)
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id to scrape into (required)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "search keyword (defaults to the campaign category)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max results per location")
	_ = cmd.MarkFlagRequired("campaign")

	return cmd
}

func runScrape(ctx context.Context, campaignID, keyword string, limit int) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	campaign, err := a.leads.GetCampaign(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("failed to load campaign %s: %w", campaignID, err)
	}
	if keyword == "" {
		keyword = campaign.Category
	}

	jobID := a.scrape.Start(job.ScrapeRequest{
		CampaignID:  campaign.ID,
		Keyword:     keyword,
		City:        campaign.City,
		PostalCodes: campaign.PostalCodes,
		Limit:       limit,
	})
	a.log.Info("scrape job started", "job_id", jobID)

	done, err := waitForJob(ctx, a.jobs, jobID)
	if err != nil {
		return err
	}

	renderJobSummary(done)
	if done.Status == job.StatusFailed {
		return fmt.Errorf("scrape job %s failed", jobID)
	}
	return nil
}

// waitForJob polls the store until the job leaves the running state.
func waitForJob(ctx context.Context, store job.Store, jobID string) (job.Job, error) {
	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return job.Job{}, ctx.Err()
		case <-ticker.C:
			j, ok := store.Get(jobID)
			if !ok {
				return job.Job{}, fmt.Errorf("job %s disappeared from the store", jobID)
			}
			if j.Status != job.StatusRunning {
				return j, nil
			}
		}
	}
}

func renderJobSummary(j job.Job) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Job", "Status", "Scraped", "Imported", "Duplicates", "Invalid", "Emails", "Errors"})
	t.AppendRow(table.Row{
		j.ID,
		j.Status,
		j.TotalScraped,
		j.TotalImported,
		j.TotalDuplicates,
		j.TotalInvalid,
		j.EmailsFound,
		len(j.Errors),
	})
	t.Render()

	for _, errMsg := range j.Errors {
		fmt.Fprintln(os.Stderr, "error:", errMsg)
	}
}
