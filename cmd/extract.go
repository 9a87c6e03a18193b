package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rayanlekkat/brio-lead-scraper/internal/job"
)

func newExtractCommand() *cobra.Command {
	var (
		campaignID string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Crawl lead websites for contact emails",
		Long:  `Crawls the websites of a campaign's leads and attaches the best scored email to each lead. By default only leads without an email are crawled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), campaignID, all)
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id to extract for (required)")
	cmd.Flags().BoolVar(&all, "all", false, "re-crawl leads that already have an email")
	_ = cmd.MarkFlagRequired("campaign")

	return cmd
}

func runExtract(ctx context.Context, campaignID string, all bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	list, err := a.leads.ListLeads(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	var targets []job.ExtractTarget
	for _, lead := range list {
		if lead.Website == "" {
			continue
		}
		if lead.Email != "" && !all {
			continue
		}
		targets = append(targets, job.ExtractTarget{LeadID: lead.ID, Website: lead.Website})
	}
	if len(targets) == 0 {
		fmt.Println("nothing to extract: no leads with a website pending")
		return nil
	}

	jobID := a.extract.Start(job.ExtractRequest{
		CampaignID: campaignID,
		Targets:    targets,
	})
	a.log.Info("extract job started", "job_id", jobID, "targets", len(targets))

	done, err := waitForJob(ctx, a.jobs, jobID)
	if err != nil {
		return err
	}

	renderJobSummary(done)
	return nil
}
