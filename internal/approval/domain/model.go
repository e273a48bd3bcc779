package domain

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// ApprovalRequest is one purchase approval. ID is the request number
// and the record's local identity.
type ApprovalRequest struct {
	DocumentID string `json:"-"`
	Demo       bool   `json:"demo,omitempty"`

	ID            string `json:"id"`
	ItemName      string `json:"itemName"`
	Quantity      int    `json:"quantity"`
	Unit          string `json:"unit"`
	Category      string `json:"category"`
	Reason        string `json:"reason"`
	Priority      string `json:"priority"`
	Department    string `json:"department"`
	EstimatedCost string `json:"estimatedCost"`
	Status        string `json:"status"`
	RequestedBy   string `json:"requestedBy"`
	RequestedAt   string `json:"requestedAt"`
	Comments      string `json:"comments"`
	ResolvedAt    string `json:"resolvedAt,omitempty"`
}

func (r ApprovalRequest) LocalID() string  { return r.ID }
func (r ApprovalRequest) ServerID() string { return r.DocumentID }
func (r ApprovalRequest) Synthetic() bool  { return r.Demo }

func FromDocument(doc docdomain.Document) (ApprovalRequest, bool) {
	id := doc.StringField("id")
	if id == "" {
		return ApprovalRequest{}, false
	}
	return ApprovalRequest{
		DocumentID:    snowflake.ID(doc.ID).String(),
		ID:            id,
		ItemName:      doc.StringField("itemName"),
		Quantity:      doc.IntField("quantity"),
		Unit:          doc.StringField("unit"),
		Category:      doc.StringField("category"),
		Reason:        doc.StringField("reason"),
		Priority:      doc.StringField("priority"),
		Department:    doc.StringField("department"),
		EstimatedCost: doc.StringField("estimatedCost"),
		Status:        doc.StringField("status"),
		RequestedBy:   doc.StringField("requestedBy"),
		RequestedAt:   doc.StringField("requestedAt"),
		Comments:      doc.StringField("comments"),
		ResolvedAt:    doc.StringField("resolvedAt"),
	}, true
}

func (r ApprovalRequest) DocumentFields() map[string]any {
	return map[string]any{
		"id":            r.ID,
		"itemName":      r.ItemName,
		"quantity":      r.Quantity,
		"unit":          r.Unit,
		"category":      r.Category,
		"reason":        r.Reason,
		"priority":      r.Priority,
		"department":    r.Department,
		"estimatedCost": r.EstimatedCost,
		"status":        r.Status,
		"requestedBy":   r.RequestedBy,
		"requestedAt":   r.RequestedAt,
		"comments":      r.Comments,
	}
}

func DemoSeed() []ApprovalRequest {
	return []ApprovalRequest{
		{Demo: true, ID: "REQ-001", ItemName: "Printer Toner HP 85A", Quantity: 10, Unit: "box", Category: "Consumables", Reason: "Stock critically low in admin office. Needed for semester-end report printing.", Priority: PriorityHigh, Department: "Admin", EstimatedCost: "12000", Status: StatusPending, RequestedBy: "Ravi Kumar", RequestedAt: "2024-02-15", Comments: ""},
		{Demo: true, ID: "REQ-002", ItemName: "Arduino Mega 2560", Quantity: 15, Unit: "pcs", Category: "Lab Equipment", Reason: "Required for embedded systems lab sessions in Feb-March.", Priority: PriorityMedium, Department: "Electronics", EstimatedCost: "18000", Status: StatusApproved, RequestedBy: "Priya Nair", RequestedAt: "2024-02-14", Comments: "Approved. PO raised."},
		{Demo: true, ID: "REQ-003", ItemName: "Safety Goggles", Quantity: 30, Unit: "pcs", Category: "Consumables", Reason: "Current stock damaged, mandatory for lab safety compliance.", Priority: PriorityHigh, Department: "Chemistry", EstimatedCost: "4500", Status: StatusPending, RequestedBy: "Dr. Mehta", RequestedAt: "2024-02-13", Comments: ""},
		{Demo: true, ID: "REQ-004", ItemName: "UPS 1KVA APC", Quantity: 5, Unit: "pcs", Category: "Fixed Assets", Reason: "Server room needs power backup upgrade.", Priority: PriorityLow, Department: "IT", EstimatedCost: "25000", Status: StatusRejected, RequestedBy: "Suresh IT", RequestedAt: "2024-02-12", Comments: "Budget not available this quarter."},
	}
}

func CSVHeaders() []string {
	return []string{"Request ID", "Item", "Quantity", "Unit", "Priority", "Department", "Estimated Cost", "Status", "Requested By", "Requested At"}
}

func (r ApprovalRequest) CSVRow() []string {
	return []string{
		r.ID,
		r.ItemName,
		strconv.Itoa(r.Quantity),
		r.Unit,
		r.Priority,
		r.Department,
		r.EstimatedCost,
		r.Status,
		r.RequestedBy,
		r.RequestedAt,
	}
}
