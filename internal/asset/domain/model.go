package domain

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
)

var Categories = []string{"Lab Equipment", "Consumables", "Fixed Assets", "Construction", "Digital", "Furniture", "Other"}

var Locations = []string{"Main Block", "Admin Block", "CS Lab", "ECE Lab", "Mechanical Lab", "Civil Lab", "Seminar Hall", "Hostel", "Main Store", "Library"}

const (
	StatusAvailable   = "available"
	StatusIssued      = "issued"
	StatusMaintenance = "maintenance"
	StatusDisposed    = "disposed"
)

var Statuses = []string{StatusAvailable, StatusIssued, StatusMaintenance, StatusDisposed}

// Asset is one inventory row. AssetID is the institution's tag and the
// record's local identity; DocumentID is empty for rows that only exist
// locally; Demo marks seed rows.
type Asset struct {
	DocumentID string `json:"-"`
	Demo       bool   `json:"demo,omitempty"`

	AssetID      string `json:"assetId"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	Quantity     int    `json:"quantity"`
	MinQuantity  int    `json:"minQuantity"`
	Unit         string `json:"unit"`
	Status       string `json:"status"`
	Department   string `json:"department"`
	Description  string `json:"description"`
	PurchaseDate string `json:"purchaseDate"`
	Cost         string `json:"cost"`
	CreatedBy    string `json:"createdBy,omitempty"`
}

func (a Asset) LocalID() string  { return a.AssetID }
func (a Asset) ServerID() string { return a.DocumentID }
func (a Asset) Synthetic() bool  { return a.Demo }

// LowStock reports whether the quantity has reached the reorder level.
func (a Asset) LowStock() bool { return a.Quantity <= a.MinQuantity }

// FromDocument decodes a stored document; ok=false when the document
// carries no asset tag.
func FromDocument(doc docdomain.Document) (Asset, bool) {
	assetID := doc.StringField("assetId")
	if assetID == "" {
		return Asset{}, false
	}
	return Asset{
		DocumentID:   snowflake.ID(doc.ID).String(),
		AssetID:      assetID,
		Name:         doc.StringField("name"),
		Category:     doc.StringField("category"),
		Location:     doc.StringField("location"),
		Quantity:     doc.IntField("quantity"),
		MinQuantity:  doc.IntField("minQuantity"),
		Unit:         doc.StringField("unit"),
		Status:       doc.StringField("status"),
		Department:   doc.StringField("department"),
		Description:  doc.StringField("description"),
		PurchaseDate: doc.StringField("purchaseDate"),
		Cost:         doc.StringField("cost"),
		CreatedBy:    doc.StringField("createdBy"),
	}, true
}

// DocumentFields encodes the editable fields of the asset.
func (a Asset) DocumentFields() map[string]any {
	return map[string]any{
		"assetId":      a.AssetID,
		"name":         a.Name,
		"category":     a.Category,
		"location":     a.Location,
		"quantity":     a.Quantity,
		"minQuantity":  a.MinQuantity,
		"unit":         a.Unit,
		"status":       a.Status,
		"department":   a.Department,
		"description":  a.Description,
		"purchaseDate": a.PurchaseDate,
		"cost":         a.Cost,
	}
}

// DemoSeed is the collection shown when the document store has no
// assets yet or cannot be read.
func DemoSeed() []Asset {
	return []Asset{
		{Demo: true, AssetID: "CIT-0001", Name: "Dell OptiPlex 7090", Category: "Fixed Assets", Location: "CS Lab", Quantity: 20, MinQuantity: 5, Unit: "pcs", Status: StatusAvailable, Department: "Computer Science", Description: "Core i7, 16GB RAM", PurchaseDate: "2023-06-15", Cost: "45000"},
		{Demo: true, AssetID: "CIT-0002", Name: "Digital Oscilloscope", Category: "Lab Equipment", Location: "ECE Lab", Quantity: 8, MinQuantity: 2, Unit: "pcs", Status: StatusIssued, Department: "Electronics & Communication", Description: "4-channel 50MHz", PurchaseDate: "2022-11-20", Cost: "28000"},
		{Demo: true, AssetID: "CIT-0003", Name: "Printer Toner HP 85A", Category: "Consumables", Location: "Admin Block", Quantity: 3, MinQuantity: 10, Unit: "box", Status: StatusAvailable, Department: "Admin", Description: "", PurchaseDate: "2024-01-10", Cost: "1200"},
		{Demo: true, AssetID: "CIT-0004", Name: "Projector BenQ MX522", Category: "Fixed Assets", Location: "Seminar Hall", Quantity: 4, MinQuantity: 2, Unit: "pcs", Status: StatusMaintenance, Department: "Admin", Description: "XGA 3300 lumens", PurchaseDate: "2021-08-05", Cost: "35000"},
		{Demo: true, AssetID: "CIT-0005", Name: "Vernier Caliper", Category: "Lab Equipment", Location: "Mechanical Lab", Quantity: 15, MinQuantity: 5, Unit: "pcs", Status: StatusAvailable, Department: "Mechanical", Description: "0-150mm range", PurchaseDate: "2023-03-10", Cost: "2500"},
		{Demo: true, AssetID: "CIT-0006", Name: "AutoCAD Workstation", Category: "Fixed Assets", Location: "Civil Lab", Quantity: 10, MinQuantity: 3, Unit: "pcs", Status: StatusAvailable, Department: "Civil", Description: "Licensed AutoCAD", PurchaseDate: "2023-07-22", Cost: "55000"},
		{Demo: true, AssetID: "CIT-0007", Name: "Arduino Uno Kit", Category: "Lab Equipment", Location: "ECE Lab", Quantity: 25, MinQuantity: 10, Unit: "pcs", Status: StatusAvailable, Department: "Electronics & Communication", Description: "With breadboard", PurchaseDate: "2024-01-05", Cost: "800"},
		{Demo: true, AssetID: "CIT-0008", Name: "Whiteboard Markers (Box)", Category: "Consumables", Location: "Main Block", Quantity: 9, MinQuantity: 30, Unit: "box", Status: StatusAvailable, Department: "Admin", Description: "Multicolor set", PurchaseDate: "2024-02-01", Cost: "350"},
	}
}

// CSVHeaders and CSVRow define the export projection.
func CSVHeaders() []string {
	return []string{"Asset ID", "Name", "Category", "Location", "Quantity", "Unit", "Status", "Department", "Cost", "Purchase Date"}
}

func (a Asset) CSVRow() []string {
	return []string{
		a.AssetID,
		a.Name,
		a.Category,
		a.Location,
		strconv.Itoa(a.Quantity),
		a.Unit,
		a.Status,
		a.Department,
		a.Cost,
		a.PurchaseDate,
	}
}
