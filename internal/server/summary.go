package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
)

func (s *Server) GetFinancialSummary(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		StartDate string `form:"start_date"`
		EndDate   string `form:"end_date"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.summarySvc.GetFinancialSummary(c.Request.Context(), profileID, query.StartDate, query.EndDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
