package handler

import (
	"net/http"
	"strconv"

	repo "techmart/internal/repository"
	"techmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.AdminUserUsecase
}

func NewAdminUserHandler(uc *usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type adminUpdateRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users", h.list)
	g.PATCH("/users/:id/role", h.updateRole)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	f := repo.UserListFilter{
		Role:  c.QueryParam("role"),
		Page:  1,
		Limit: 50,
	}

	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("invalid page"))
		}
		f.Page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("invalid limit"))
		}
		f.Limit = l
	}

	out, total, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listJSON(out, total))
}

func (h *AdminUserHandler) updateRole(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	targetID := c.Param("id")

	var req adminUpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	if err := h.uc.UpdateRole(c.Request().Context(), actorID, targetID, req.Role); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(nil))
}
