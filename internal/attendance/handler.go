package attendance

import (
	"net/http"

	"fitclass/internal/api"
	"fitclass/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Mark attendance
// @Description  Admin or the class trainer; the booking must be BOOKED
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Param        request body attendance.MarkRequest true "Presence"
// @Success      200 {object} attendance.Attendance
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/attendance [put]
func (h *Handler) Mark(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	bookingID, ok := api.ParamID(c, "bookingID")
	if !ok {
		return
	}

	var req MarkRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.MarkAttendance(c.Request.Context(), actor, bookingID, *req.Present)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// @Summary      Delete attendance
// @Tags         attendance
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      204
// @Router       /bookings/{bookingID}/attendance [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	bookingID, ok := api.ParamID(c, "bookingID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, bookingID); err != nil {
		api.WriteError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary      Attendance for a class
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {array} attendance.ClassAttendance
// @Router       /classes/{classID}/attendance [get]
func (h *Handler) ListByClass(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	classID, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	list, err := h.service.ListByClass(c.Request.Context(), actor, classID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// @Summary      Attendance history of a member
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        memberID path int true "Member ID"
// @Success      200 {array} attendance.MemberAttendance
// @Router       /members/{memberID}/attendance [get]
func (h *Handler) ListByMember(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	memberID, ok := api.ParamID(c, "memberID")
	if !ok {
		return
	}

	list, err := h.service.ListByMember(c.Request.Context(), actor, memberID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
