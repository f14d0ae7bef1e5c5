package handler

import (
	"net/http"

	"github.com/circlesoft/crm/internal/application/backup"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/export"
	"github.com/gin-gonic/gin"
)

// maxImportSize bounds uploaded customer workbooks
const maxImportSize = 10 << 20

// BackupHandler handles export, backup and import endpoints
type BackupHandler struct {
	BaseHandler
	service *backup.Service
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(service *backup.Service) *BackupHandler {
	return &BackupHandler{service: service}
}

func (h *BackupHandler) format(c *gin.Context) (export.Format, bool) {
	f, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatJSON)))
	if err != nil {
		h.HandleError(c, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error()))
		return "", false
	}
	return f, true
}

// Export GET /export?format=json|yaml|xlsx downloads the user's data
func (h *BackupHandler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}
	f, err := h.service.Export(c.Request.Context(), userID, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

// Backup POST /backup?format= stores an export at the backup destination
func (h *BackupHandler) Backup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}
	location, err := h.service.Backup(c.Request.Context(), userID, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"location": location})
}

// ImportCustomers POST /import/customers with a multipart "file" workbook
func (h *BackupHandler) ImportCustomers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	if header.Size > maxImportSize {
		h.BadRequest(c, "file is too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "file could not be read")
		return
	}
	defer file.Close()

	res, err := h.service.ImportCustomers(c.Request.Context(), userID, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
