package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	productapp "github.com/keyward-io/keyward/internal/application/product"
	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/shared/logger"
	"github.com/keyward-io/keyward/internal/shared/utils"
)

// ProductHandler exposes the admin product and release management API.
type ProductHandler struct {
	service *productapp.Service
	teams   team.Repository
	logger  logger.Interface
}

func NewProductHandler(service *productapp.Service, teams team.Repository, logger logger.Interface) *ProductHandler {
	return &ProductHandler{
		service: service,
		teams:   teams,
		logger:  logger,
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req productapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create product", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), c.Param("teamId"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	products, total, err := h.service.ListProducts(c.Request.Context(), tm.ID(), page, pageSize)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, products, total, page, pageSize)
}

func (h *ProductHandler) Get(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), tm.ID(), c.Param("productId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), tm.ID(), c.Param("productId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "product deleted", nil)
}

func (h *ProductHandler) CreateRelease(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	var req productapp.CreateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create release", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rel, err := h.service.CreateRelease(c.Request.Context(), tm.ID(), c.Param("productId"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, rel)
}

func (h *ProductHandler) ListReleases(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	releases, err := h.service.ListReleases(c.Request.Context(), tm.ID(), c.Param("productId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", releases)
}

func (h *ProductHandler) AttachFile(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	var req productapp.AttachFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for attach file", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rel, err := h.service.AttachFile(c.Request.Context(), tm.ID(), c.Param("productId"), c.Param("version"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", rel)
}

func (h *ProductHandler) PublishRelease(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	rel, err := h.service.PublishRelease(c.Request.Context(), tm.ID(), c.Param("productId"), c.Param("version"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", rel)
}

func (h *ProductHandler) ArchiveRelease(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	rel, err := h.service.ArchiveRelease(c.Request.Context(), tm.ID(), c.Param("productId"), c.Param("version"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", rel)
}

func (h *ProductHandler) SetLatest(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	rel, err := h.service.SetLatest(c.Request.Context(), tm.ID(), c.Param("productId"), c.Param("version"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", rel)
}

func (h *ProductHandler) SetAllowedLicenses(c *gin.Context) {
	tm, ok := h.resolveTeam(c)
	if !ok {
		return
	}

	var req productapp.SetAllowedLicensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for set allowed licenses", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rel, err := h.service.SetAllowedLicenses(c.Request.Context(), tm.ID(), c.Param("productId"), c.Param("version"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", rel)
}

func (h *ProductHandler) resolveTeam(c *gin.Context) (*team.Team, bool) {
	tm, err := h.teams.GetBySID(c.Request.Context(), c.Param("teamId"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "team not found")
		return nil, false
	}
	return tm, true
}
