package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	procurementdomain "github.com/tracesphere/campusasset/internal/procurement/domain"
)

type listPurchaseOrdersQuery struct {
	Search string `form:"q"`
	Status string `form:"status"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) ListPurchaseOrders(c *gin.Context) {
	var query listPurchaseOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result := s.procurementSvc.List(c.Request.Context(), procurementdomain.Query{
		Search: strings.TrimSpace(query.Search),
		Status: strings.TrimSpace(query.Status),
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) CreatePurchaseOrder(c *gin.Context) {
	var req procurementdomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.procurementSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("purchase_order.created", "purchase_order", created.PONumber, c, map[string]any{
		"item_name": created.ItemName,
	})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdatePurchaseOrder(c *gin.Context) {
	poNumber := strings.TrimSpace(c.Param("id"))
	if poNumber == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req procurementdomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.procurementSvc.Update(c.Request.Context(), poNumber, req); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("purchase_order.updated", "purchase_order", poNumber, c, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) UpdatePurchaseOrderStatus(c *gin.Context) {
	poNumber := strings.TrimSpace(c.Param("id"))
	if poNumber == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.procurementSvc.UpdateStatus(c.Request.Context(), poNumber, strings.TrimSpace(req.Status)); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("purchase_order.status_changed", "purchase_order", poNumber, c, map[string]any{
		"status": req.Status,
	})
	c.Status(http.StatusNoContent)
}

func (s *Server) DeletePurchaseOrder(c *gin.Context) {
	poNumber := strings.TrimSpace(c.Param("id"))
	if poNumber == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	confirmed := c.Query("confirm") == "true"
	if err := s.procurementSvc.Delete(c.Request.Context(), poNumber, confirmed); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("purchase_order.deleted", "purchase_order", poNumber, c, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ExportPurchaseOrders(c *gin.Context) {
	var query listPurchaseOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	csv := s.procurementSvc.ExportCSV(c.Request.Context(), procurementdomain.Query{
		Search: strings.TrimSpace(query.Search),
		Status: strings.TrimSpace(query.Status),
	})

	writeCSV(c, "purchase-orders.csv", csv)
}
