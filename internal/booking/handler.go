package booking

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

// @Summary      Book a class
// @Description  Reserves a seat, or a waitlist place when the class is full. member_id defaults to the caller.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Param        request body booking.CreateRequest false "Member to book"
// @Success      201 {object} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /classes/{classID}/bookings [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	classID, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	var req CreateRequest
	if c.Request.ContentLength != 0 && !api.BindJSON(c, &req) {
		return
	}
	if req.MemberID == 0 {
		req.MemberID = actor.ID
	}

	b, err := h.service.Create(c.Request.Context(), actor, classID, req.MemberID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// @Summary      Cancel a booking
// @Description  Idempotent; a freed seat goes to the oldest waitlisted booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	bookingID, ok := api.ParamID(c, "bookingID")
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), actor, bookingID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary      Seats left in a class
// @Tags         bookings
// @Produce      json
// @Param        classID path int true "Class ID"
// @Success      200 {object} booking.Seats
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID}/seats [get]
func (h *Handler) Seats(c *gin.Context) {
	classID, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	seats, err := h.service.SeatsLeft(c.Request.Context(), classID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, seats)
}

// @Summary      Bookings of a class
// @Description  Full roster for admins and the class trainer, a status summary for members
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} booking.ClassListing
// @Router       /classes/{classID}/bookings [get]
func (h *Handler) ListByClass(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	classID, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	listing, err := h.service.ListByClass(c.Request.Context(), actor, classID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// @Summary      Bookings of a member
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        memberID path int true "Member ID"
// @Success      200 {array} booking.MemberBooking
// @Router       /members/{memberID}/bookings [get]
func (h *Handler) ListByUser(c *gin.Context) {
	actor, ok := auth.MustActor(c)
	if !ok {
		return
	}
	memberID, ok := api.ParamID(c, "memberID")
	if !ok {
		return
	}

	list, err := h.service.ListByUser(c.Request.Context(), actor, memberID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
