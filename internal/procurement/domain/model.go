package domain

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusOrdered   = "ordered"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPending, StatusApproved, StatusOrdered, StatusDelivered, StatusCancelled}

var Suppliers = []string{"TechMart India", "LabSupply Co.", "OfficeWorld", "BuildPro", "DigiSource", "SafetyFirst", "Other"}

// PurchaseOrder is one procurement row. PONumber is the record's local
// identity, generated when the form leaves it blank.
type PurchaseOrder struct {
	DocumentID string `json:"-"`
	Demo       bool   `json:"demo,omitempty"`

	PONumber     string  `json:"poNumber"`
	ItemName     string  `json:"itemName"`
	Category     string  `json:"category"`
	Supplier     string  `json:"supplier"`
	Quantity     int     `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitCost     float64 `json:"unitCost"`
	Department   string  `json:"department"`
	ExpectedDate string  `json:"expectedDate"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	Notes        string  `json:"notes"`
	RequestedBy  string  `json:"requestedBy"`
}

func (o PurchaseOrder) LocalID() string  { return o.PONumber }
func (o PurchaseOrder) ServerID() string { return o.DocumentID }
func (o PurchaseOrder) Synthetic() bool  { return o.Demo }

// Total is the order value, spent only once delivered.
func (o PurchaseOrder) Total() float64 { return float64(o.Quantity) * o.UnitCost }

func FromDocument(doc docdomain.Document) (PurchaseOrder, bool) {
	poNumber := doc.StringField("poNumber")
	if poNumber == "" {
		return PurchaseOrder{}, false
	}
	return PurchaseOrder{
		DocumentID:   snowflake.ID(doc.ID).String(),
		PONumber:     poNumber,
		ItemName:     doc.StringField("itemName"),
		Category:     doc.StringField("category"),
		Supplier:     doc.StringField("supplier"),
		Quantity:     doc.IntField("quantity"),
		Unit:         doc.StringField("unit"),
		UnitCost:     doc.FloatField("unitCost"),
		Department:   doc.StringField("department"),
		ExpectedDate: doc.StringField("expectedDate"),
		Status:       doc.StringField("status"),
		Priority:     doc.StringField("priority"),
		Notes:        doc.StringField("notes"),
		RequestedBy:  doc.StringField("requestedBy"),
	}, true
}

func (o PurchaseOrder) DocumentFields() map[string]any {
	return map[string]any{
		"poNumber":     o.PONumber,
		"itemName":     o.ItemName,
		"category":     o.Category,
		"supplier":     o.Supplier,
		"quantity":     o.Quantity,
		"unit":         o.Unit,
		"unitCost":     o.UnitCost,
		"department":   o.Department,
		"expectedDate": o.ExpectedDate,
		"status":       o.Status,
		"priority":     o.Priority,
		"notes":        o.Notes,
	}
}

func DemoSeed() []PurchaseOrder {
	return []PurchaseOrder{
		{Demo: true, PONumber: "PO-2024-001", ItemName: "Dell OptiPlex 7090", Category: "Fixed Assets", Supplier: "TechMart India", Quantity: 5, Unit: "pcs", UnitCost: 45000, Department: "CS Lab", ExpectedDate: "2024-03-01", Status: StatusDelivered, Priority: "high", Notes: "Core i7, 16GB RAM", RequestedBy: "Admin"},
		{Demo: true, PONumber: "PO-2024-002", ItemName: "Arduino Mega 2560", Category: "Lab Equipment", Supplier: "DigiSource", Quantity: 20, Unit: "pcs", UnitCost: 1200, Department: "Electronics", ExpectedDate: "2024-02-20", Status: StatusOrdered, Priority: "medium", Notes: "", RequestedBy: "Priya Nair"},
		{Demo: true, PONumber: "PO-2024-003", ItemName: "Safety Goggles", Category: "Consumables", Supplier: "SafetyFirst", Quantity: 50, Unit: "pcs", UnitCost: 150, Department: "Chemistry", ExpectedDate: "2024-02-25", Status: StatusApproved, Priority: "high", Notes: "ANSI certified", RequestedBy: "Dr. Mehta"},
		{Demo: true, PONumber: "PO-2024-004", ItemName: "Printer Toner HP 85A", Category: "Consumables", Supplier: "OfficeWorld", Quantity: 10, Unit: "box", UnitCost: 1200, Department: "Admin", ExpectedDate: "2024-02-18", Status: StatusPending, Priority: "high", Notes: "", RequestedBy: "Ravi Kumar"},
		{Demo: true, PONumber: "PO-2024-005", ItemName: "Oscilloscope DS1054Z", Category: "Lab Equipment", Supplier: "LabSupply Co.", Quantity: 3, Unit: "pcs", UnitCost: 28000, Department: "Electronics", ExpectedDate: "2024-03-10", Status: StatusCancelled, Priority: "low", Notes: "Budget constraint", RequestedBy: "Admin"},
	}
}

func CSVHeaders() []string {
	return []string{"PO Number", "Item", "Category", "Supplier", "Qty", "Unit", "Unit Cost", "Total", "Status", "Department", "Expected Date"}
}

func (o PurchaseOrder) CSVRow() []string {
	return []string{
		o.PONumber,
		o.ItemName,
		o.Category,
		o.Supplier,
		strconv.Itoa(o.Quantity),
		o.Unit,
		strconv.FormatFloat(o.UnitCost, 'f', -1, 64),
		strconv.FormatFloat(o.Total(), 'f', -1, 64),
		o.Status,
		o.Department,
		o.ExpectedDate,
	}
}
