package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	licenseapp "github.com/keyward-io/keyward/internal/application/license"
	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/shared/constants"
	"github.com/keyward-io/keyward/internal/shared/logger"
	"github.com/keyward-io/keyward/internal/shared/utils"
)

// LicenseHandler exposes the admin license management API. All routes are
// scoped to a team by SID.
type LicenseHandler struct {
	service *licenseapp.Service
	teams   team.Repository
	logger  logger.Interface
}

func NewLicenseHandler(service *licenseapp.Service, teams team.Repository, logger logger.Interface) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		teams:   teams,
		logger:  logger,
	}
}

func (h *LicenseHandler) Issue(c *gin.Context) {
	var req licenseapp.IssueLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for issue license", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	issued, err := h.service.Issue(c.Request.Context(), c.Param("teamId"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, issued)
}

func (h *LicenseHandler) List(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	licenses, total, err := h.service.List(c.Request.Context(), tm.ID(), page, pageSize)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, licenses, total, page, pageSize)
}

func (h *LicenseHandler) Get(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	lic, err := h.service.Get(c.Request.Context(), tm.ID(), c.Param("licenseId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", lic)
}

func (h *LicenseHandler) Suspend(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	if err := h.service.Suspend(c.Request.Context(), tm.ID(), c.Param("licenseId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license suspended", nil)
}

func (h *LicenseHandler) Unsuspend(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	if err := h.service.Unsuspend(c.Request.Context(), tm.ID(), c.Param("licenseId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license unsuspended", nil)
}

func (h *LicenseHandler) UpdateExpiration(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	var req licenseapp.UpdateExpirationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update expiration", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	lic, err := h.service.UpdateExpiration(c.Request.Context(), tm.ID(), c.Param("licenseId"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", lic)
}

func (h *LicenseHandler) Delete(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tm.ID(), c.Param("licenseId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license deleted", nil)
}

func (h *LicenseHandler) ListDevices(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	devices, err := h.service.ListDevices(c.Request.Context(), tm.ID(), c.Param("licenseId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", devices)
}

func (h *LicenseHandler) ForgetDevice(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	err := h.service.ForgetDevice(c.Request.Context(), tm.ID(), c.Param("licenseId"), c.Param("identifier"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "device forgotten", nil)
}

func (h *LicenseHandler) resolveTeam(c *gin.Context) (*team.Team, bool) {
	tm, err := h.teams.GetBySID(c.Request.Context(), c.Param("teamId"))
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "team not found")
		} else {
			h.logger.Errorw("failed to resolve team", "error", err)
			utils.ErrorResponseWithError(c, err)
		}
		return nil, false
	}
	return tm, true
}

// pagination reads page and page_size query parameters with defaults.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.DefaultPage)))
	if err != nil || page < 1 {
		page = constants.DefaultPage
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return page, pageSize
}
