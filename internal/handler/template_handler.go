package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/ltxbench/internal/service"
	"github.com/locvowork/ltxbench/internal/service/serviceutils"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeZip  = "application/zip"
)

// TemplateGenerator is what TemplateHandler needs from the service layer.
type TemplateGenerator interface {
	Generate(ctx context.Context, req service.GenerateRequest) (*service.GeneratedWorkbook, error)
	GenerateBatch(ctx context.Context, reqs []service.GenerateRequest) ([]byte, error)
}

type TemplateHandler struct {
	svc TemplateGenerator
}

func NewTemplateHandler(svc TemplateGenerator) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

func attachment(c echo.Context, filename, contentType string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, data)
}

// GenerateHandler streams one generated workbook.
func (h *TemplateHandler) GenerateHandler(c echo.Context) error {
	var req GenerateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	wb, err := h.svc.Generate(c.Request().Context(), req.toService())
	if err != nil {
		return failure(c, "Failed to generate template", err)
	}
	if len(wb.CoercedWeights) > 0 {
		c.Response().Header().Set("X-Coerced-Weights", fmt.Sprint(len(wb.CoercedWeights)))
	}
	return attachment(c, wb.Filename, mimeXLSX, wb.Data)
}

// BatchHandler streams a zip archive with one workbook per request.
func (h *TemplateHandler) BatchHandler(c echo.Context) error {
	var req BatchTemplateRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	reqs := make([]service.GenerateRequest, len(req.Requests))
	for i, r := range req.Requests {
		reqs[i] = r.toService()
	}

	data, err := h.svc.GenerateBatch(c.Request().Context(), reqs)
	if err != nil {
		return failure(c, "Failed to generate templates", err)
	}

	name := service.NormalizeFilename(req.Filename)
	if name == "" {
		name = "templates"
	}
	return attachment(c, name+".zip", mimeZip, data)
}
