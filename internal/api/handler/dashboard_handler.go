package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/univexams/exam-portal/internal/core/domain"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// viewScope tells a role-specific view which record its queries are scoped to.
type viewScope struct {
	View       string             `json:"view"`
	EntityKind string             `json:"entity_kind"`
	EntityID   string             `json:"entity_id"`
	Session    domain.SessionView `json:"session"`
}

type dashboardResponse struct {
	Dashboard domain.DashboardView `json:"dashboard"`
	Session   domain.SessionView   `json:"session"`
}

// Session returns the caller's session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SessionView
// @Failure      401  {object}  map[string]string
// @Router       /v1/session [get]
func (h *DashboardHandler) Session(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.View())
}

// Dashboard returns the dashboard matching the caller's role.
//
// @Summary      Role dashboard
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	dash, err := domain.DashboardFor(s.Identity.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{Dashboard: dash, Session: s.View()})
}

// StudentView returns the scope of the student exam-schedule view.
//
// @Summary      Student view scope
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  viewScope
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/views/student [get]
func (h *DashboardHandler) StudentView(c echo.Context) error {
	return h.scope(c, "student_schedule")
}

// ProfessorView returns the scope of the professor surveillance view.
//
// @Summary      Professor view scope
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  viewScope
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/views/professor [get]
func (h *DashboardHandler) ProfessorView(c echo.Context) error {
	return h.scope(c, "professor_surveillances")
}

// DepartmentHeadView returns the scope of the department exam overview.
//
// @Summary      Department head view scope
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  viewScope
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/views/department-head [get]
func (h *DashboardHandler) DepartmentHeadView(c echo.Context) error {
	return h.scope(c, "department_exams")
}

func (h *DashboardHandler) scope(c echo.Context, view string) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	entity := s.Identity.LinkedEntity
	if entity == nil || entity.EntityID() == "" {
		return domain.ErrForbidden
	}
	return c.JSON(http.StatusOK, viewScope{
		View:       view,
		EntityKind: entity.Kind(),
		EntityID:   entity.EntityID(),
		Session:    s.View(),
	})
}
