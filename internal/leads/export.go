package leads

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var exportHeader = []string{
	"name", "phone", "email", "website", "address",
	"rating", "reviews_count", "category", "neighborhood", "status",
}

// ExportCSV writes a campaign's leads as CSV, one row per lead in
// import order.
func (s *Service) ExportCSV(ctx context.Context, campaignID string, w io.Writer) error {
	if _, err := s.GetCampaign(ctx, campaignID); err != nil {
		return err
	}
	list, err := s.ListLeads(ctx, campaignID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, lead := range list {
		rating := ""
		if lead.Rating > 0 {
			rating = strconv.FormatFloat(lead.Rating, 'f', 1, 64)
		}
		row := []string{
			lead.Name,
			lead.Phone,
			lead.Email,
			lead.Website,
			lead.Address,
			rating,
			strconv.Itoa(lead.ReviewsCount),
			lead.Category,
			lead.Neighborhood,
			string(lead.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
