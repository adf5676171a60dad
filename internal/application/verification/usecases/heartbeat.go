package usecases

import (
	"context"

	"github.com/keyward-io/keyward/internal/domain/requestlog"
)

// HeartbeatUseCase renews a device seat. It is the verify pipeline under a
// different endpoint tag; the challenge nonce in the command is echoed back
// unmodified on a valid response.
type HeartbeatUseCase struct {
	verify *VerifyLicenseUseCase
}

func NewHeartbeatUseCase(verify *VerifyLicenseUseCase) *HeartbeatUseCase {
	return &HeartbeatUseCase{verify: verify}
}

func (uc *HeartbeatUseCase) Execute(ctx context.Context, cmd VerifyCommand) *VerifyResult {
	cmd.Endpoint = requestlog.EndpointHeartbeat
	return uc.verify.Execute(ctx, cmd)
}
