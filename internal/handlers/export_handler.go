package handlers

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"quicktask/internal/models"
	"quicktask/internal/services"
)

type ExportHandler struct {
	service services.ExportService
}

func NewExportHandler(service services.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

type exportFunc func(ctx context.Context, w io.Writer, ownerID int64, filter models.TaskFilter) error

// render buffers the whole document so a failure can still become a JSON error.
func (h *ExportHandler) render(c *gin.Context, tag, contentType, filename string, write exportFunc) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := write(c.Request.Context(), &buf, getUserID(c), filter); err != nil {
		respondError(c, tag, err)
		return
	}
	log.Printf("%s[ok] userID=%d bytes=%d", tag, getUserID(c), buf.Len())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// @Summary  Экспорт задач в CSV
// @Tags     Export
// @Produce  text/csv
// @Security BearerAuth
// @Param    status    query  string  false  "фильтр по статусу"
// @Param    priority  query  string  false  "фильтр по приоритету"
// @Param    search    query  string  false  "поиск по названию"
// @Success  200
// @Router   /api/export/csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	h.render(c, "[export][csv]", "text/csv; charset=utf-8", "tasks-export.csv", h.service.WriteCSV)
}

// @Summary  Экспорт задач в PDF
// @Tags     Export
// @Produce  application/pdf
// @Security BearerAuth
// @Param    status    query  string  false  "фильтр по статусу"
// @Param    priority  query  string  false  "фильтр по приоритету"
// @Param    search    query  string  false  "поиск по названию"
// @Success  200
// @Router   /api/export/pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	h.render(c, "[export][pdf]", "application/pdf", "tasks-export.pdf", h.service.WritePDF)
}
