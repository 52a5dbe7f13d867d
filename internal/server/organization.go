package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	organizationdomain "github.com/smallbiznis/invoicely/internal/organization/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
)

func (s *Server) CreateOrganization(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req organizationdomain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Create(c.Request.Context(), profileID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.organizationSvc.List(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrganizationByID(c *gin.Context) {
	profileID, orgID, ok := s.organizationParams(c)
	if !ok {
		return
	}

	resp, err := s.organizationSvc.GetByID(c.Request.Context(), profileID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	profileID, orgID, ok := s.organizationParams(c)
	if !ok {
		return
	}

	var patch organizationdomain.OrganizationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Update(c.Request.Context(), profileID, orgID, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOrganization(c *gin.Context) {
	profileID, orgID, ok := s.organizationParams(c)
	if !ok {
		return
	}

	deleted, err := s.organizationSvc.Delete(c.Request.Context(), profileID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !deleted {
		AbortWithError(c, organizationdomain.ErrNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteAllOrganizations(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	count, err := s.organizationSvc.DeleteAll(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": count}})
}

func (s *Server) organizationParams(c *gin.Context) (snowflake.ID, snowflake.ID, bool) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return 0, 0, false
	}
	orgID, err := parseIDParam(c, "orgId", organizationdomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return 0, 0, false
	}
	return profileID, orgID, true
}
