package visits

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ohsapp/ohs/internal/platform/auth"
)

// listWindow reads optional limit/offset query params. No limit means the
// whole result set.
func listWindow(c echo.Context) (limit, offset int) {
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – any authenticated portal role
	readGroup := api.Group("", auth.RequireRole("employee", "medical_staff"))
	readGroup.GET("/visit-requests", h.List)
	readGroup.GET("/visit-requests/counts", h.Counts)
	readGroup.GET("/visit-requests/:id", h.Get)

	// Employees open requests and answer proposals
	employeeGroup := api.Group("", auth.RequireRole("employee", "medical_staff"))
	employeeGroup.POST("/visit-requests", h.Create)
	employeeGroup.POST("/visit-requests/:id/accept", h.Accept)
	employeeGroup.POST("/visit-requests/:id/reject", h.Reject)

	// Medical staff drive scheduling decisions
	staffGroup := api.Group("", auth.RequireRole("medical_staff"))
	staffGroup.POST("/visit-requests/:id/confirm", h.Confirm)
	staffGroup.POST("/visit-requests/:id/propose", h.Propose)
	staffGroup.POST("/visit-requests/:id/propose-after-rejection", h.ProposeAfterRejection)
	staffGroup.POST("/visit-requests/:id/maintain-rejected", h.MaintainRejected)

	// Destructive reset is admin-only
	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.DELETE("/employees/:employeeId/visit-requests", h.ResetEmployee)
}

// httpError translates the domain error taxonomy onto status codes: bad
// input is 400, unknown id 404, illegal transitions and lost version races
// 409.
func httpError(err error) error {
	var ve *ValidationError
	var te *TransitionError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.As(err, &te):
		return echo.NewHTTPError(http.StatusConflict, te.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "visit request not found")
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "visit request was modified, re-fetch and retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func requestID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) List(c echo.Context) error {
	f := Filter{
		Status:    Status(c.QueryParam("status")),
		VisitType: VisitType(c.QueryParam("visitType")),
		Search:    c.QueryParam("q"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}
	if f.VisitType != "" && !f.VisitType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown visit type")
	}
	limit, offset := listWindow(c)
	items, _, err := h.svc.List(c.Request().Context(), f, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Counts(c echo.Context) error {
	counts, err := h.svc.CountByStatus(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) Confirm(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var in ConfirmInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.DirectConfirm(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Propose(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var in SlotInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.ProposeSlot(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ProposeAfterRejection(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var in SlotInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.ProposeAfterRejection(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Accept(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.AcceptProposal(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.RejectProposal(c.Request().Context(), id, body.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) MaintainRejected(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.MaintainRejected(c.Request().Context(), id, body.Note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ResetEmployee(c echo.Context) error {
	employeeID := c.Param("employeeId")
	if err := h.svc.ResetEmployeeRequests(c.Request().Context(), employeeID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
