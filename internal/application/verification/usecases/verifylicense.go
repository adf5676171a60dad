package usecases

import (
	"context"

	"github.com/keyward-io/keyward/internal/application/verification/dto"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// VerifyCommand is one verify or heartbeat request.
type VerifyCommand struct {
	TeamSID     string
	LicenseKey  string
	HardwareID  string
	CustomerSID string
	ProductSID  string
	Challenge   string
	IPAddress   string
	Endpoint    requestlog.Endpoint
}

// VerifyResult pairs the response envelope with the HTTP status the handler
// writes.
type VerifyResult struct {
	Response   dto.VerifyResponse
	HTTPStatus int
}

// VerifyLicenseUseCase runs the full verify pipeline and shapes the client
// response. Heartbeat shares it unchanged; the only difference is the
// endpoint tag and the challenge echo.
type VerifyLicenseUseCase struct {
	gates  *Gates
	logger logger.Interface
}

func NewVerifyLicenseUseCase(gates *Gates, logger logger.Interface) *VerifyLicenseUseCase {
	return &VerifyLicenseUseCase{
		gates:  gates,
		logger: logger,
	}
}

// Execute decides the request. It never returns an error: infrastructure
// failures surface as INTERNAL_SERVER_ERROR results (fail closed).
func (uc *VerifyLicenseUseCase) Execute(ctx context.Context, cmd VerifyCommand) *VerifyResult {
	req := GateRequest{
		TeamSID:     cmd.TeamSID,
		LicenseKey:  cmd.LicenseKey,
		HardwareID:  cmd.HardwareID,
		CustomerSID: cmd.CustomerSID,
		ProductSID:  cmd.ProductSID,
		IPAddress:   cmd.IPAddress,
		Endpoint:    cmd.Endpoint,
	}

	out := uc.gates.Run(ctx, req)
	if out.Result.IsValid() {
		if rejected := uc.gates.ReserveSeat(ctx, out.Team, out.License, cmd.HardwareID, cmd.IPAddress, out.Country()); rejected != nil {
			out.Result = rejected
		}
	}

	uc.gates.Finish(ctx, req, out)

	result := &VerifyResult{
		Response: dto.VerifyResponse{
			Result: dto.NewResultDTO(out.Result),
		},
		HTTPStatus: out.Result.HTTPStatus(),
	}
	if out.Result.IsValid() {
		result.Response.Data = uc.buildData(out, cmd)
	}

	return result
}

func (uc *VerifyLicenseUseCase) buildData(out *GateOutcome, cmd VerifyCommand) *dto.VerifyData {
	lic := out.License
	data := &dto.VerifyData{
		License: &dto.LicenseSummary{
			ID:             lic.SID(),
			ExpirationType: string(lic.Expiration().Type),
			ExpirationDate: lic.Expiration().Date,
			Suspended:      lic.Suspended(),
		},
		Challenge: cmd.Challenge,
	}

	if cmd.CustomerSID != "" {
		for _, c := range lic.Customers() {
			if c.SID == cmd.CustomerSID {
				data.Customer = &dto.CustomerSummary{ID: c.SID, Name: c.Name}
				break
			}
		}
	}
	if out.Product != nil {
		data.Product = &dto.ProductSummary{ID: out.Product.SID(), Name: out.Product.Name()}
	}

	return data
}
