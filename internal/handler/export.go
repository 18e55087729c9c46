package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"finance-dashboard/internal/export"
	"finance-dashboard/internal/ledger"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出交易或模板表格（CSV / XLSX）
type ExportHandler struct {
	Ledger *ledger.Cache
	now    func() time.Time
}

func NewExportHandler(cache *ledger.Cache) *ExportHandler {
	return &ExportHandler{Ledger: cache, now: time.Now}
}

func (h *ExportHandler) format(c *gin.Context) (export.Format, bool) {
	f := c.DefaultQuery("format", string(export.XLSX))
	format, err := export.ParseFormat(f)
	if err != nil {
		badRequest(c, "Formato inválido")
		return "", false
	}
	return format, true
}

// Transactions 导出 ?kind=detailed|summary，支持 start/end/category 过滤
func (h *ExportHandler) Transactions(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}
	start, end, category, ok := parseRange(c)
	if !ok {
		return
	}
	kind := export.Kind(c.DefaultQuery("kind", string(export.Detailed)))

	table, err := export.Transactions(h.Ledger.Snapshot(), kind, export.Options{Start: start, End: end, Category: category})
	if err != nil {
		badRequest(c, "Tipo de relatório inválido")
		return
	}
	h.write(c, table, format, export.FileName(kind, format, h.now()))
}

func (h *ExportHandler) Template(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}
	name := c.Param("name")
	table, err := export.Template(name)
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Modelo não encontrado")
		return
	}
	h.write(c, table, format, export.TemplateFileName(name, format, h.now()))
}

func (h *ExportHandler) Templates(c *gin.Context) {
	util.Success(c, util.Response{"templates": export.TemplateNames})
}

func (h *ExportHandler) write(c *gin.Context, table export.Table, format export.Format, filename string) {
	// 设置响应头
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s",
		filename, url.PathEscape(filename)))
	c.Status(http.StatusOK)

	if err := export.Write(c.Writer, table, format); err != nil {
		_ = c.Error(err)
		if !c.Writer.Written() {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao exportar")
		}
	}
}
