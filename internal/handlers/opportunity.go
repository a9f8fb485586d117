package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/services"
	"github.com/agrosub/agrosub-backend/internal/types"
)

const maxDocumentBytes = 20 << 20 // 20 MiB

type OpportunityHandler struct {
	log           *logger.Logger
	catalog       services.CatalogService
	opportunities services.OpportunityService
	ingestion     services.IngestionService
}

func NewOpportunityHandler(
	log *logger.Logger,
	catalog services.CatalogService,
	opportunities services.OpportunityService,
	ingestion services.IngestionService,
) *OpportunityHandler {
	return &OpportunityHandler{
		log:           log.With("handler", "OpportunityHandler"),
		catalog:       catalog,
		opportunities: opportunities,
		ingestion:     ingestion,
	}
}

// ListPublished is the public catalog read: published rows only, newest first.
func (h *OpportunityHandler) ListPublished(c *gin.Context) {
	opportunities, err := h.catalog.GetSnapshot(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list published opportunities", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load opportunities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": opportunities})
}

func (h *OpportunityHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	opportunity, err := h.opportunities.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOpportunityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
			return
		}
		h.log.Error("Failed to load opportunity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load opportunity"})
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if opportunity.Status != types.OpportunityStatusPublished && (rd == nil || !rd.IsAdmin) {
		c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunity": opportunity})
}

// ListAll is the admin view: every status, including drafts and archives.
func (h *OpportunityHandler) ListAll(c *gin.Context) {
	opportunities, err := h.opportunities.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list opportunities", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load opportunities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": opportunities})
}

func (h *OpportunityHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var opportunity types.Opportunity
	if err := c.ShouldBindJSON(&opportunity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opportunity.AuthorID = rd.UserID
	created, err := h.opportunities.Create(c.Request.Context(), &opportunity)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown opportunity status"})
			return
		}
		h.log.Error("Failed to create opportunity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create opportunity"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"opportunity": created})
}

func (h *OpportunityHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	var opportunity types.Opportunity
	if err := c.ShouldBindJSON(&opportunity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opportunity.ID = id
	updated, err := h.opportunities.Update(c.Request.Context(), &opportunity)
	if err != nil {
		if errors.Is(err, services.ErrOpportunityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
			return
		}
		h.log.Error("Failed to update opportunity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update opportunity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunity": updated})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OpportunityHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.opportunities.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown opportunity status"})
		default:
			h.log.Error("Failed to set opportunity status", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set status"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *OpportunityHandler) AttachDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	filename, contentType, data, ok := readUpload(c, maxDocumentBytes)
	if !ok {
		return
	}
	url, err := h.opportunities.AttachDocument(c.Request.Context(), id, filename, contentType, data)
	if err != nil {
		if errors.Is(err, services.ErrOpportunityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
			return
		}
		h.log.Error("Failed to attach document", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// IngestPDF creates a published opportunity straight from an uploaded call
// document.
func (h *OpportunityHandler) IngestPDF(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	filename, _, data, ok := readUpload(c, maxDocumentBytes)
	if !ok {
		return
	}
	opportunity, err := h.ingestion.IngestPDF(c.Request.Context(), rd.UserID, filename, data)
	if err != nil {
		if errors.Is(err, services.ErrEmptyDocument) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "document contains no extractable text"})
			return
		}
		h.log.Error("Failed to ingest PDF", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest document"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"opportunity": opportunity})
}

// readUpload pulls the multipart "file" part, enforcing the size cap.
func readUpload(c *gin.Context, maxBytes int64) (string, string, []byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return "", "", nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return "", "", nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return "", "", nil, false
	}
	return fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, true
}
