package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/logger"
	"github.com/locvowork/ltxbench/internal/service/serviceutils"
)

// LibraryService is what LibraryHandler needs from the service layer.
type LibraryService interface {
	ListReadmes(ctx context.Context, filter domain.ReadmeFilter) ([]domain.ReadmeInstruction, error)
	GetReadme(ctx context.Context, id int64) (*domain.ReadmeInstruction, error)
	CreateReadme(ctx context.Context, ri *domain.ReadmeInstruction) error
	UpdateReadme(ctx context.Context, ri *domain.ReadmeInstruction) error
	DeleteReadme(ctx context.Context, id int64) error
	ListMetrics(ctx context.Context, filter domain.MetricFilter) ([]domain.Metric, error)
	CreateMetric(ctx context.Context, m *domain.Metric) error
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
	CreateOrganization(ctx context.Context, o *domain.Organization) error
	ListProjects(ctx context.Context, organizationID int64) ([]domain.Project, error)
	CreateProject(ctx context.Context, p *domain.Project) error
}

type LibraryHandler struct {
	svc LibraryService
}

func NewLibraryHandler(svc LibraryService) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func failure(c echo.Context, message string, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorLog(c.Request().Context(), message, err)
	}
	return serviceutils.ResponseError(c, status, message, err)
}

// ==================== README ====================

func (h *LibraryHandler) ListReadmesHandler(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))

	readmes, err := h.svc.ListReadmes(c.Request().Context(), domain.ReadmeFilter{
		ActiveOnly: activeOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return failure(c, "Failed to list readmes", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Readmes listed successfully", readmes)
}

func (h *LibraryHandler) GetReadmeHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid readme ID", err)
	}

	ri, err := h.svc.GetReadme(c.Request().Context(), id)
	if err != nil {
		return failure(c, "Failed to get readme", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Readme retrieved successfully", ri)
}

func (h *LibraryHandler) CreateReadmeHandler(c echo.Context) error {
	var req ReadmeRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ri := req.toDomain()
	if err := h.svc.CreateReadme(c.Request().Context(), ri); err != nil {
		return failure(c, "Failed to create readme", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Readme created successfully", ri)
}

func (h *LibraryHandler) UpdateReadmeHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid readme ID", err)
	}

	var req ReadmeRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	ri := req.toDomain()
	ri.ID = id

	if err := h.svc.UpdateReadme(c.Request().Context(), ri); err != nil {
		return failure(c, "Failed to update readme", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Readme updated successfully", ri)
}

func (h *LibraryHandler) DeleteReadmeHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid readme ID", err)
	}

	if err := h.svc.DeleteReadme(c.Request().Context(), id); err != nil {
		return failure(c, "Failed to delete readme", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Readme deleted successfully", nil)
}

// ==================== Metrics ====================

func (h *LibraryHandler) ListMetricsHandler(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	filter := domain.MetricFilter{
		Type:       domain.MetricType(c.QueryParam("type")),
		Query:      c.QueryParam("q"),
		ActiveOnly: true,
		Limit:      limit,
	}

	metrics, err := h.svc.ListMetrics(c.Request().Context(), filter)
	if err != nil {
		return failure(c, "Failed to list metrics", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Metrics listed successfully", metrics)
}

func (h *LibraryHandler) CreateMetricHandler(c echo.Context) error {
	var req MetricRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	m := req.toDomain()
	if err := h.svc.CreateMetric(c.Request().Context(), m); err != nil {
		return failure(c, "Failed to create metric", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Metric created successfully", m)
}

// ==================== Organizations / Projects ====================

func (h *LibraryHandler) ListOrganizationsHandler(c echo.Context) error {
	orgs, err := h.svc.ListOrganizations(c.Request().Context())
	if err != nil {
		return failure(c, "Failed to list organizations", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Organizations listed successfully", orgs)
}

func (h *LibraryHandler) CreateOrganizationHandler(c echo.Context) error {
	var req OrganizationRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	org := &domain.Organization{Name: req.Name}
	if err := h.svc.CreateOrganization(c.Request().Context(), org); err != nil {
		return failure(c, "Failed to create organization", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Organization created successfully", org)
}

func (h *LibraryHandler) ListProjectsHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid organization ID", err)
	}

	projects, err := h.svc.ListProjects(c.Request().Context(), id)
	if err != nil {
		return failure(c, "Failed to list projects", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Projects listed successfully", projects)
}

func (h *LibraryHandler) CreateProjectHandler(c echo.Context) error {
	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	p := &domain.Project{Name: req.Name, Description: req.Description, OrganizationID: req.OrganizationID}
	if err := h.svc.CreateProject(c.Request().Context(), p); err != nil {
		return failure(c, "Failed to create project", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Project created successfully", p)
}
