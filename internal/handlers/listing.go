package handlers

import (
	"errors"
	"net/http"

	"nexusmarket/internal/middleware"
	"nexusmarket/internal/models"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	store    *store.Store
	listings *services.ListingService
}

func NewListingHandler(st *store.Store, ls *services.ListingService) *ListingHandler {
	return &ListingHandler{store: st, listings: ls}
}

// Marketplace 市场首页：全部挂单，最新的在前
func (h *ListingHandler) Marketplace(c *gin.Context) {
	h.store.FetchListings(c.Request.Context())
	OK(c, gin.H{"listings": h.store.Listings()})
}

// Detail 挂单详情页
func (h *ListingHandler) Detail(c *gin.Context) {
	listing, err := h.listings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			Fail(c, http.StatusNotFound, err.Error())
			return
		}
		Fail(c, http.StatusBadGateway, err.Error())
		return
	}
	OK(c, gin.H{"listing": listing})
}

// ShowCreate 发布页的初始表单值
func (h *ListingHandler) ShowCreate(c *gin.Context) {
	OK(c, gin.H{"form": models.DefaultListingForm()})
}

func (h *ListingHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form models.ListingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		Fail(c, http.StatusBadRequest, "invalid form data")
		return
	}
	if form.Title == "" {
		Fail(c, http.StatusBadRequest, "title is required")
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), form, user.ID)
	if err != nil {
		// 远端约束报错原样透传
		Fail(c, http.StatusBadGateway, err.Error())
		return
	}

	h.store.AddListing(*listing)
	OK(c, gin.H{"listing": listing})
}

// ShowEdit 编辑页数据。非属主且非管理员直接拒绝（远端还会再查一次）
func (h *ListingHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)

	listing, err := h.listings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			Fail(c, http.StatusNotFound, err.Error())
			return
		}
		Fail(c, http.StatusBadGateway, err.Error())
		return
	}
	if listing.OwnerID != user.ID && user.Role != models.RoleAdmin {
		Fail(c, http.StatusForbidden, services.ErrNotOwner.Error())
		return
	}
	OK(c, gin.H{"form": listing})
}

func (h *ListingHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var patch models.ListingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		Fail(c, http.StatusBadRequest, "invalid form data")
		return
	}

	listing, err := h.listings.Update(c.Request.Context(), c.Param("id"), patch, user.ID, user.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.store.UpdateListingInStore(*listing)
	OK(c, gin.H{"listing": listing})
}

func (h *ListingHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := c.Param("id")

	if err := h.listings.Delete(c.Request.Context(), id, user.ID, user.Role); err != nil {
		h.writeError(c, err)
		return
	}

	h.store.RemoveListingFromStore(id)
	c.Status(http.StatusOK)
}

func (h *ListingHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotOwner):
		Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrListingNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	default:
		Fail(c, http.StatusBadGateway, err.Error())
	}
}
