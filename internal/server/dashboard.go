package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetDashboardStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboardSvc.Stats(c.Request.Context()))
}
