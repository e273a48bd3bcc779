package domain

import "context"

// Stats is the headline KPI block for the landing page.
type Stats struct {
	TotalAssets      int    `json:"totalAssets"`
	LowStockItems    int    `json:"lowStockItems"`
	PendingApprovals int    `json:"pendingApprovals"`
	ActiveIssued     int    `json:"activeIssued"`
	Mode             string `json:"mode"`
}

type Service interface {
	Stats(ctx context.Context) Stats
}
