package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
)

func (s *Server) CreateProfile(c *gin.Context) {
	var req profiledomain.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.profileSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProfiles(c *gin.Context) {
	resp, err := s.profileSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProfileByID(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.profileSvc.GetByID(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProfile(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var patch profiledomain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.profileSvc.Update(c.Request.Context(), profileID, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProfile(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	deleted, err := s.profileSvc.Delete(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !deleted {
		AbortWithError(c, profiledomain.ErrNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteAllProfiles(c *gin.Context) {
	count, err := s.profileSvc.DeleteAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": count}})
}
