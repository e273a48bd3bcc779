package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	assetdomain "github.com/tracesphere/campusasset/internal/asset/domain"
)

type listAssetsQuery struct {
	Search   string `form:"q"`
	Category string `form:"category"`
	Status   string `form:"status"`
}

func (s *Server) ListAssets(c *gin.Context) {
	var query listAssetsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result := s.assetSvc.List(c.Request.Context(), assetdomain.Query{
		Search:   strings.TrimSpace(query.Search),
		Category: strings.TrimSpace(query.Category),
		Status:   strings.TrimSpace(query.Status),
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetAssetByID(c *gin.Context) {
	assetID := strings.TrimSpace(c.Param("id"))
	if assetID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	asset, err := s.assetSvc.Lookup(c.Request.Context(), assetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// LookupAsset answers the scanner page: verify an asset tag and show
// its current record.
func (s *Server) LookupAsset(c *gin.Context) {
	assetID := strings.TrimSpace(c.Query("asset_id"))
	if assetID == "" {
		AbortWithError(c, newValidationError("asset_id", "invalid_asset_id", "asset_id is required"))
		return
	}

	asset, err := s.assetSvc.Lookup(c.Request.Context(), assetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (s *Server) CreateAsset(c *gin.Context) {
	var req assetdomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.assetSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("asset.created", "asset", created.AssetID, c, map[string]any{
		"name": created.Name,
	})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdateAsset(c *gin.Context) {
	assetID := strings.TrimSpace(c.Param("id"))
	if assetID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req assetdomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.assetSvc.Update(c.Request.Context(), assetID, req); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("asset.updated", "asset", assetID, c, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteAsset(c *gin.Context) {
	assetID := strings.TrimSpace(c.Param("id"))
	if assetID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	confirmed := c.Query("confirm") == "true"
	if err := s.assetSvc.Delete(c.Request.Context(), assetID, confirmed); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit("asset.deleted", "asset", assetID, c, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ExportAssets(c *gin.Context) {
	var query listAssetsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	csv := s.assetSvc.ExportCSV(c.Request.Context(), assetdomain.Query{
		Search:   strings.TrimSpace(query.Search),
		Category: strings.TrimSpace(query.Category),
		Status:   strings.TrimSpace(query.Status),
	})

	writeCSV(c, "inventory.csv", csv)
}
