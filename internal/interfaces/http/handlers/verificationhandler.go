package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/keyward-io/keyward/internal/application/verification/dto"
	"github.com/keyward-io/keyward/internal/application/verification/usecases"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/domain/verification"
	"github.com/keyward-io/keyward/internal/infrastructure/metrics"
	"github.com/keyward-io/keyward/internal/shared/constants"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// VerificationHandler serves the client-facing verify, heartbeat, and
// classloader endpoints. Every response is a typed result envelope; Go
// errors never reach the wire.
type VerificationHandler struct {
	verifyUC      *usecases.VerifyLicenseUseCase
	heartbeatUC   *usecases.HeartbeatUseCase
	classloaderUC *usecases.ClassloaderUseCase
	logger        logger.Interface
}

func NewVerificationHandler(
	verifyUC *usecases.VerifyLicenseUseCase,
	heartbeatUC *usecases.HeartbeatUseCase,
	classloaderUC *usecases.ClassloaderUseCase,
	logger logger.Interface,
) *VerificationHandler {
	return &VerificationHandler{
		verifyUC:      verifyUC,
		heartbeatUC:   heartbeatUC,
		classloaderUC: classloaderUC,
		logger:        logger,
	}
}

func (h *VerificationHandler) Verify(c *gin.Context) {
	h.runVerify(c, requestlog.EndpointVerify)
}

func (h *VerificationHandler) Heartbeat(c *gin.Context) {
	h.runVerify(c, requestlog.EndpointHeartbeat)
}

func (h *VerificationHandler) runVerify(c *gin.Context, endpoint requestlog.Endpoint) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResult(c, verification.Fail(verification.StatusBadRequest))
		return
	}

	cmd := usecases.VerifyCommand{
		TeamSID:     c.Param("teamId"),
		LicenseKey:  req.LicenseKey,
		HardwareID:  req.Hardware(),
		CustomerSID: req.CustomerID,
		ProductSID:  req.ProductID,
		Challenge:   req.Challenge,
		IPAddress:   c.ClientIP(),
		Endpoint:    endpoint,
	}

	var result *usecases.VerifyResult
	if endpoint == requestlog.EndpointHeartbeat {
		result = h.heartbeatUC.Execute(c.Request.Context(), cmd)
	} else {
		result = h.verifyUC.Execute(c.Request.Context(), cmd)
	}

	c.JSON(result.HTTPStatus, result.Response)
}

func (h *VerificationHandler) Classloader(c *gin.Context) {
	var query dto.ClassloaderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeResult(c, verification.Fail(verification.StatusBadRequest))
		return
	}

	cmd := usecases.ClassloaderCommand{
		TeamSID:     c.Param("teamId"),
		LicenseKey:  query.LicenseKey,
		HardwareID:  query.Hardware(),
		CustomerSID: query.CustomerID,
		ProductSID:  query.ProductID,
		Version:     query.Version,
		Branch:      query.Branch,
		SessionKey:  query.SessionKey,
		IPAddress:   c.ClientIP(),
	}

	result := h.classloaderUC.Execute(c.Request.Context(), cmd)
	if result.File == nil {
		writeResult(c, result.Result)
		return
	}

	file := result.File
	defer file.Closer.Close()

	headers := file.Headers
	c.Header(constants.HeaderXFileSize, strconv.FormatInt(headers.FileSize, 10))
	c.Header(constants.HeaderXProductName, headers.ProductName)
	c.Header(constants.HeaderXReleaseStatus, headers.ReleaseStatus)
	c.Header(constants.HeaderXVersion, headers.Version)
	if headers.LatestVersion != "" {
		c.Header(constants.HeaderXLatestVersion, headers.LatestVersion)
	}
	if headers.MainClass != "" {
		c.Header(constants.HeaderXMainClass, headers.MainClass)
	}
	c.Header(constants.HeaderContentType, constants.ContentTypeOctetStream)
	c.Status(http.StatusOK)

	written, err := io.Copy(c.Writer, file.Stream)
	if err != nil {
		// Accounting already happened; a broken client connection only
		// cuts the stream short.
		h.logger.Warnw("classloader stream interrupted",
			"written", written,
			"size", headers.FileSize,
			"error", err,
		)
	}
	metrics.ClassloaderBytesTotal.Add(float64(written))
}

// writeResult renders a rejection as the standard envelope with a nil data
// block.
func writeResult(c *gin.Context, result *verification.Result) {
	c.JSON(result.HTTPStatus(), dto.VerifyResponse{
		Data:   nil,
		Result: dto.NewResultDTO(result),
	})
}
