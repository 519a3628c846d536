package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitbuds/middleware"
	"fitbuds/models"
	"fitbuds/services/wizard"
	"fitbuds/utils"
)

// WizardHandler exposes one endpoint per wizard action. Expected flow
// failures come back as HTTP 200 with the banner set on the session; the
// widget renders them inline, so they are not transport errors.
type WizardHandler struct {
	svc    wizard.Service
	logger *zap.Logger
}

func NewWizardHandler(svc wizard.Service, logger *zap.Logger) *WizardHandler {
	return &WizardHandler{svc: svc, logger: logger}
}

// StartSession creates a wizard session seeded from the embed token claims.
func (h *WizardHandler) StartSession(c *gin.Context) {
	var seed wizard.SessionSeed
	if claims, ok := middleware.EmbedClaims(c); ok {
		seed = wizard.SessionSeed{
			IsLoggedIn:   claims.IsLoggedIn,
			RemoteUserID: claims.RemoteUserID,
			RemoteToken:  claims.RemoteToken,
			FullName:     claims.FullName,
			CountryCode:  claims.CountryCode,
			Mobile:       claims.Mobile,
			Email:        claims.Email,
		}
	}

	sess, err := h.svc.Start(c.Request.Context(), seed)
	h.respond(c, sess, err)
}

// GetSession returns the current session state.
func (h *WizardHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("sessionID"))
	h.respond(c, sess, err)
}

// CancelSession drops the session ("book another appointment").
func (h *WizardHandler) CancelSession(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("sessionID")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func (h *WizardHandler) SelectCategory(c *gin.Context) {
	var input struct {
		CategoryName string `json:"category_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.svc.SelectCategory(c.Request.Context(), c.Param("sessionID"), input.CategoryName)
	h.respond(c, sess, err)
}

func (h *WizardHandler) SelectProvider(c *gin.Context) {
	var input struct {
		ProviderID int `json:"provider_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.svc.SelectProvider(c.Request.Context(), c.Param("sessionID"), input.ProviderID)
	h.respond(c, sess, err)
}

func (h *WizardHandler) SelectDate(c *gin.Context) {
	var input struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.svc.SelectDate(c.Request.Context(), c.Param("sessionID"), input.Date)
	h.respond(c, sess, err)
}

func (h *WizardHandler) SelectSlot(c *gin.Context) {
	var input struct {
		SlotID int `json:"slot_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.svc.SelectSlot(c.Request.Context(), c.Param("sessionID"), input.SlotID)
	h.respond(c, sess, err)
}

func (h *WizardHandler) SubmitRegistration(c *gin.Context) {
	var form wizard.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.svc.SubmitRegistration(c.Request.Context(), c.Param("sessionID"), form)
	h.respond(c, sess, err)
}

func (h *WizardHandler) ConfirmReservation(c *gin.Context) {
	sess, err := h.svc.ConfirmReservation(c.Request.Context(), c.Param("sessionID"))
	h.respond(c, sess, err)
}

func (h *WizardHandler) SetCoupon(c *gin.Context) {
	var input struct {
		Coupon string `json:"coupon"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.svc.SetCoupon(c.Request.Context(), c.Param("sessionID"), input.Coupon)
	h.respond(c, sess, err)
}

func (h *WizardHandler) ValidateCoupon(c *gin.Context) {
	sess, err := h.svc.ValidateCoupon(c.Request.Context(), c.Param("sessionID"))
	h.respond(c, sess, err)
}

func (h *WizardHandler) RemoveCartItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "item id must be numeric")
		return
	}
	sess, err := h.svc.RemoveCartItem(c.Request.Context(), c.Param("sessionID"), itemID)
	h.respond(c, sess, err)
}

func (h *WizardHandler) Checkout(c *gin.Context) {
	sess, err := h.svc.Checkout(c.Request.Context(), c.Param("sessionID"))
	h.respond(c, sess, err)
}

func (h *WizardHandler) Pay(c *gin.Context) {
	var input struct {
		ChannelID int `json:"channel_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.svc.Pay(c.Request.Context(), c.Param("sessionID"), input.ChannelID)
	h.respond(c, sess, err)
}

func (h *WizardHandler) Back(c *gin.Context) {
	sess, err := h.svc.Back(c.Request.Context(), c.Param("sessionID"))
	h.respond(c, sess, err)
}

func (h *WizardHandler) DismissError(c *gin.Context) {
	sess, err := h.svc.DismissError(c.Request.Context(), c.Param("sessionID"))
	h.respond(c, sess, err)
}

func (h *WizardHandler) respond(c *gin.Context, sess *models.WizardSession, err error) {
	if errors.Is(err, wizard.ErrSessionNotFound) {
		utils.JSONError(c, http.StatusNotFound, "session not found or expired", "")
		return
	}
	if sess == nil {
		h.logger.Error("wizard action failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}
