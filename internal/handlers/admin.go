package handlers

import (
	"net/http"

	"nexusmarket/internal/middleware"
	"nexusmarket/internal/models"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	store    *store.Store
	listings *services.ListingService
}

func NewAdminHandler(st *store.Store, ls *services.ListingService) *AdminHandler {
	return &AdminHandler{store: st, listings: ls}
}

// Panel 控制台总览：全部用户 + 全部挂单
func (h *AdminHandler) Panel(c *gin.Context) {
	ctx := c.Request.Context()
	h.store.FetchAllUsers(ctx)
	h.store.FetchListings(ctx)
	OK(c, gin.H{
		"users":    h.store.AllUsers(),
		"listings": h.store.Listings(),
	})
}

// ToggleFeature 推荐/取消推荐一条挂单
func (h *AdminHandler) ToggleFeature(c *gin.Context) {
	listing, err := h.listings.ToggleFeature(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, http.StatusNotFound, err.Error())
		return
	}
	h.store.UpdateListingInStore(*listing)
	OK(c, gin.H{"listing": listing})
}

// ToggleVerification 切换用户认证标记
func (h *AdminHandler) ToggleVerification(c *gin.Context) {
	h.store.ToggleUserVerification(c.Request.Context(), c.Param("id"))
	OK(c, gin.H{"users": h.store.AllUsers()})
}

// SetPremium 审批高级卖家申请：approved 通过，none 驳回/撤销
func (h *AdminHandler) SetPremium(c *gin.Context) {
	status := models.PremiumStatus(c.PostForm("status"))
	switch status {
	case models.PremiumNone, models.PremiumPending, models.PremiumApproved:
	default:
		Fail(c, http.StatusBadRequest, "invalid premium status")
		return
	}

	h.store.SetPremiumStatus(c.Request.Context(), c.Param("id"), status)
	OK(c, gin.H{"users": h.store.AllUsers()})
}

// DeleteListing 管理员删除任意挂单
func (h *AdminHandler) DeleteListing(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := c.Param("id")

	if err := h.listings.Delete(c.Request.Context(), id, user.ID, user.Role); err != nil {
		Fail(c, http.StatusBadGateway, err.Error())
		return
	}
	h.store.RemoveListingFromStore(id)
	c.Status(http.StatusOK)
}
