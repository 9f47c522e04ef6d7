package customer

import (
	"net/http"
	"strconv"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/RentalDesk/RentalDesk/internal/common/server"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/customers", h.create)
	rg.GET("/customers", h.list)
	rg.GET("/customers/:id", h.get)
	rg.PUT("/customers/:id", h.update)
	rg.DELETE("/customers/:id", h.remove)
}

type customerReq struct {
	NationalID string  `json:"national_id"`
	LicenseNo  *string `json:"license_no"`
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Address    *string `json:"address"`
}

func (h *Handler) create(c *gin.Context) {
	var req customerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	in := CreateInput{NationalID: req.NationalID}
	if req.LicenseNo != nil {
		in.LicenseNo = *req.LicenseNo
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Phone != nil {
		in.Phone = *req.Phone
	}
	if req.Email != nil {
		in.Email = *req.Email
	}
	if req.Address != nil {
		in.Address = *req.Address
	}
	out, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": out})
}

func (h *Handler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	customers, total, err := h.svc.List(c.Request.Context(), c.Query("search"), (page-1)*size, size)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": out})
}

func (h *Handler) update(c *gin.Context) {
	var req customerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.Validation("invalid request body"))
		return
	}
	out, err := h.svc.Update(c.Request.Context(), c.Param("id"), UpdateInput{
		LicenseNo: req.LicenseNo,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": out})
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
