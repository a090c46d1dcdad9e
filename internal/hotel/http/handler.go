package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
)

// RoomLister supplies the bookable rooms shown on the hotel detail page.
type RoomLister interface {
	ListAvailableByHotel(ctx context.Context, hotelID string) ([]*room.Room, error)
}

type Handler struct {
	service hotel.Service
	rooms   RoomLister
}

func NewHandler(service hotel.Service, rooms RoomLister) *Handler {
	return &Handler{service: service, rooms: rooms}
}

func (h *Handler) List(c *gin.Context) {
	var req ListHotelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	filter := hotel.Filter{
		Location: req.Location,
		Name:     req.Name,
		Star:     req.Star,
		Params:   req.Pagination(),
	}

	hotels, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]HotelResponse, len(hotels))
	for i, ht := range hotels {
		items[i] = NewHotelResponse(ht)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, pagination.NewInfo(filter.Params, total)))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid hotel id", err.Error())
		return
	}

	ctx := c.Request.Context()
	ht, err := h.service.GetActive(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	rooms, err := h.rooms.ListAvailableByHotel(ctx, ht.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	roomItems := make([]roomHttp.RoomResponse, len(rooms))
	for i, r := range rooms {
		roomItems[i] = roomHttp.NewRoomResponse(r)
	}

	c.JSON(http.StatusOK, HotelDetailResponse{
		Hotel: NewHotelResponse(ht),
		Rooms: roomItems,
	})
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateHotelRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	ht, err := h.service.Create(c.Request.Context(), hotel.CreateRequest{
		Name:        body.Name,
		Description: body.Description,
		Location:    body.Location,
		StarRating:  body.StarRating,
		Amenities:   body.Amenities,
		Address:     body.Address,
		Phone:       body.Phone,
		Email:       body.Email,
		CreatedBy:   auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewHotelResponse(ht))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid hotel id", err.Error())
		return
	}

	var body UpdateHotelRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	ht, err := h.service.Update(c.Request.Context(), uri.ID, hotel.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Location:    body.Location,
		StarRating:  body.StarRating,
		Amenities:   body.Amenities,
		Address:     body.Address,
		Phone:       body.Phone,
		Email:       body.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewHotelResponse(ht))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid hotel id", err.Error())
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
