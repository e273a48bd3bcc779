package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCatalog returns the option lists for the console forms. Any
// signed-in user may read them.
func (s *Server) GetCatalog(c *gin.Context) {
	if s.catalog == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, s.catalog.Get())
}
