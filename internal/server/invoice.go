package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicely/internal/invoice/domain"
	profiledomain "github.com/smallbiznis/invoicely/internal/profile/domain"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), profileID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoicesByOrganization(c *gin.Context) {
	profileID, orgID, ok := s.organizationParams(c)
	if !ok {
		return
	}

	resp, err := s.invoiceSvc.ListByOrganization(c.Request.Context(), profileID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	profileID, invoiceID, ok := s.invoiceParams(c)
	if !ok {
		return
	}

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), profileID, invoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceDocument(c *gin.Context) {
	profileID, invoiceID, ok := s.invoiceParams(c)
	if !ok {
		return
	}

	resp, err := s.invoiceSvc.GetDocument(c.Request.Context(), profileID, invoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	profileID, invoiceID, ok := s.invoiceParams(c)
	if !ok {
		return
	}

	var patch invoicedomain.InvoicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), profileID, invoiceID, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	profileID, invoiceID, ok := s.invoiceParams(c)
	if !ok {
		return
	}

	deleted, err := s.invoiceSvc.Delete(c.Request.Context(), profileID, invoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !deleted {
		AbortWithError(c, invoicedomain.ErrNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteAllInvoices(c *gin.Context) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	count, err := s.invoiceSvc.DeleteAllByProfile(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": count}})
}

func (s *Server) DeleteInvoicesByOrganization(c *gin.Context) {
	profileID, orgID, ok := s.organizationParams(c)
	if !ok {
		return
	}

	count, err := s.invoiceSvc.DeleteAllByOrganization(c.Request.Context(), profileID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": count}})
}

func (s *Server) invoiceParams(c *gin.Context) (snowflake.ID, snowflake.ID, bool) {
	profileID, err := parseIDParam(c, "profileId", profiledomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return 0, 0, false
	}
	invoiceID, err := parseIDParam(c, "invoiceId", invoicedomain.ErrInvalidID)
	if err != nil {
		AbortWithError(c, err)
		return 0, 0, false
	}
	return profileID, invoiceID, true
}

