package domain

import (
	"context"
	"errors"
)

type Service interface {
	Start(ctx context.Context) error
	Stop()

	List(ctx context.Context, q Query) ListResult
	Create(ctx context.Context, req CreateRequest) (*ApprovalRequest, error)
	Approve(ctx context.Context, requestID, comment string) error
	Reject(ctx context.Context, requestID, comment string) error
	Watch() (<-chan []ApprovalRequest, func())
}

type Query struct {
	Status string
}

type ListResult struct {
	Records []ApprovalRequest `json:"records"`
	Mode    string            `json:"mode"`
	Loading bool              `json:"loading"`
}

type CreateRequest struct {
	ItemName      string `json:"itemName"`
	Quantity      *int   `json:"quantity"`
	Unit          string `json:"unit"`
	Category      string `json:"category"`
	Reason        string `json:"reason"`
	Priority      string `json:"priority"`
	Department    string `json:"department"`
	EstimatedCost string `json:"estimatedCost"`
}

var (
	ErrInvalidItemName = errors.New("invalid_item_name")
	ErrInvalidReason   = errors.New("invalid_reason")
	ErrNotFound        = errors.New("not_found")
)
