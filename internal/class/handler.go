package class

import (
	"net/http"
	"strconv"

	"fitclass/internal/api"
	"fitclass/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List classes
// @Description  Admins see every class, trainers their own, members upcoming classes only
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        include_past query bool false "Include classes that already started"
// @Success      200 {array} class.Session
// @Router       /classes [get]
func (h *Handler) List(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}

	includePast, _ := strconv.ParseBool(c.Query("include_past"))

	classes, err := h.service.List(c.Request.Context(), actor, includePast)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      Create a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body class.CreateRequest true "Class payload"
// @Success      201 {object} class.Session
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Router       /classes [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}

	var req CreateRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// @Summary      Get a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} class.Session
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	session, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary      Update a class
// @Description  Partial update; capacity changes rebalance the booked set and the waitlist
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Param        request body class.Patch true "Fields to change"
// @Success      200 {object} class.Session
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID} [patch]
func (h *Handler) Update(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	var patch Patch
	if !api.BindJSON(c, &patch) {
		return
	}

	session, err := h.service.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary      Delete a class
// @Tags         classes
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      204
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		api.WriteError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
