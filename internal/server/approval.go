package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/tracesphere/campusasset/internal/approval/domain"
)

type listApprovalsQuery struct {
	Status string `form:"status"`
}

type resolveApprovalRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) ListApprovals(c *gin.Context) {
	var query listApprovalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result := s.approvalSvc.List(c.Request.Context(), approvaldomain.Query{
		Status: strings.TrimSpace(query.Status),
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) CreateApproval(c *gin.Context) {
	var req approvaldomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.approvalSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("approval.created", "approval", created.ID, c, map[string]any{
		"item_name": created.ItemName,
	})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) ApproveRequest(c *gin.Context) {
	s.resolveApproval(c, "approve")
}

func (s *Server) RejectRequest(c *gin.Context) {
	s.resolveApproval(c, "reject")
}

func (s *Server) resolveApproval(c *gin.Context, verb string) {
	requestID := strings.TrimSpace(c.Param("id"))
	if requestID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req resolveApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	var err error
	if verb == "approve" {
		err = s.approvalSvc.Approve(c.Request.Context(), requestID, req.Comment)
	} else {
		err = s.approvalSvc.Reject(c.Request.Context(), requestID, req.Comment)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("approval."+verb+"d", "approval", requestID, c, map[string]any{
		"comment": req.Comment,
	})
	c.Status(http.StatusNoContent)
}
