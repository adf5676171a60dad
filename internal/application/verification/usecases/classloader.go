package usecases

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/keyward-io/keyward/internal/application/verification/dto"
	"github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/domain/verification"
	"github.com/keyward-io/keyward/internal/infrastructure/ratelimit"
	"github.com/keyward-io/keyward/internal/infrastructure/storage"
	"github.com/keyward-io/keyward/internal/shared/config"
	"github.com/keyward-io/keyward/internal/shared/crypto"
	"github.com/keyward-io/keyward/internal/shared/logger"
	"github.com/keyward-io/keyward/internal/shared/version"
)

// ClassloaderCommand is one classloader fetch request.
type ClassloaderCommand struct {
	TeamSID     string
	LicenseKey  string
	HardwareID  string
	CustomerSID string
	ProductSID  string
	Version     string
	Branch      string
	SessionKey  string
	IPAddress   string
}

// ClassloaderFile is the encrypted stream handed to the handler on success.
// The handler must close it; closing aborts the underlying storage read.
type ClassloaderFile struct {
	Stream  io.Reader
	Closer  io.Closer
	Headers dto.ClassloaderHeaders
}

// ClassloaderResult is either a failure result rendered as the JSON envelope
// or a file to stream.
type ClassloaderResult struct {
	Result *verification.Result
	File   *ClassloaderFile
}

// ClassloaderUseCase serves encrypted release files. It runs the shared gate
// pipeline, then the release gates, the session key handshake, and the
// storage fetch. All accounting writes land before the first streamed byte,
// so a broken stream needs no rollback.
type ClassloaderUseCase struct {
	gates    *Gates
	products product.Repository
	storage  storage.ObjectStorage
	guard    ratelimit.SessionKeyGuard
	bucket   string
	cfg      config.VerificationConfig
	logger   logger.Interface
}

func NewClassloaderUseCase(
	gates *Gates,
	products product.Repository,
	objectStorage storage.ObjectStorage,
	guard ratelimit.SessionKeyGuard,
	bucket string,
	cfg config.VerificationConfig,
	logger logger.Interface,
) *ClassloaderUseCase {
	return &ClassloaderUseCase{
		gates:    gates,
		products: products,
		storage:  objectStorage,
		guard:    guard,
		bucket:   bucket,
		cfg:      cfg,
		logger:   logger,
	}
}

// Execute decides the request. Like verify, it never returns an error;
// infrastructure failures fail closed.
func (uc *ClassloaderUseCase) Execute(ctx context.Context, cmd ClassloaderCommand) *ClassloaderResult {
	req := GateRequest{
		TeamSID:     cmd.TeamSID,
		LicenseKey:  cmd.LicenseKey,
		HardwareID:  cmd.HardwareID,
		CustomerSID: cmd.CustomerSID,
		ProductSID:  cmd.ProductSID,
		IPAddress:   cmd.IPAddress,
		Endpoint:    requestlog.EndpointClassloader,
	}

	out := uc.gates.Run(ctx, req)
	defer uc.gates.Finish(ctx, req, out)

	if !out.Result.IsValid() {
		return &ClassloaderResult{Result: out.Result}
	}

	file := uc.fetch(ctx, cmd, out)
	if file == nil {
		return &ClassloaderResult{Result: out.Result}
	}
	return &ClassloaderResult{Result: out.Result, File: file}
}

// fetch runs the classloader-specific gates. On any rejection it overwrites
// out.Result and returns nil so the deferred Finish logs the real outcome.
func (uc *ClassloaderUseCase) fetch(ctx context.Context, cmd ClassloaderCommand, out *GateOutcome) *ClassloaderFile {
	if !out.Team.Limits().AllowClassloader {
		out.Result = verification.FailWithDetails(verification.StatusForbidden, "Classloader is not enabled for this team")
		return nil
	}
	if cmd.SessionKey == "" {
		out.Result = verification.Fail(verification.StatusBadRequest)
		return nil
	}

	rel, ok := uc.resolveRelease(ctx, cmd, out)
	if !ok {
		return nil
	}

	if rel.Status() == product.ReleaseStatusArchived {
		out.Result = verification.Fail(verification.StatusReleaseArchived)
		return nil
	}
	if rel.Status() == product.ReleaseStatusDraft {
		out.Result = verification.Fail(verification.StatusReleaseDraft)
		return nil
	}
	if !rel.AllowsLicense(out.License.ID()) {
		out.Result = verification.Fail(verification.StatusNoAccessToRelease)
		return nil
	}

	sessionKey, err := crypto.DecryptSessionKey(cmd.SessionKey, out.Team.KeyPair().PrivatePEM)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidSessionKey) {
			out.Result = verification.Fail(verification.StatusInvalidSessionKey)
			return nil
		}
		// Anything else means the stored key pair is broken, not the client.
		uc.logger.Errorw("session key decryption failed", "error", err, "team_sid", out.Team.SID())
		out.Result = verification.Fail(verification.StatusInternalServerError)
		return nil
	}

	// One fetch per session key; a replayed key is indistinguishable from
	// brute force and gets rate limited.
	used, err := uc.guard.MarkUsed(ctx, uc.gates.hasher.Sum(sessionKey),
		time.Duration(uc.cfg.SessionKeyReuseWindowSeconds)*time.Second)
	if err != nil {
		uc.logger.Errorw("session key guard failed", "error", err)
		out.Result = verification.Fail(verification.StatusInternalServerError)
		return nil
	}
	if used {
		out.Result = verification.FailWithDetails(verification.StatusRateLimit, "Session key was already used")
		return nil
	}

	relFile := rel.File()
	if relFile == nil {
		out.Result = verification.Fail(verification.StatusReleaseNotFound)
		return nil
	}

	obj, err := uc.storage.Get(ctx, uc.bucket, relFile.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			out.Result = verification.Fail(verification.StatusReleaseNotFound)
			return nil
		}
		uc.logger.Errorw("release fetch failed", "error", err, "key", relFile.Key)
		out.Result = verification.Fail(verification.StatusInternalServerError)
		return nil
	}

	if rejected := uc.gates.ReserveSeat(ctx, out.Team, out.License, cmd.HardwareID, cmd.IPAddress, out.Country()); rejected != nil {
		obj.Reader.Close()
		out.Result = rejected
		return nil
	}
	if err := uc.products.TouchReleaseLastSeen(ctx, rel.ID()); err != nil {
		uc.logger.Warnw("release last seen update failed", "error", err, "release_sid", rel.SID())
	}

	cipher, err := crypto.NewStreamCipher(sessionKey)
	if err != nil {
		obj.Reader.Close()
		uc.logger.Errorw("stream cipher setup failed", "error", err)
		out.Result = verification.Fail(verification.StatusInternalServerError)
		return nil
	}

	return &ClassloaderFile{
		Stream: cipher.Reader(obj.Reader),
		Closer: obj.Reader,
		Headers: dto.ClassloaderHeaders{
			FileSize:      relFile.Size,
			ProductName:   out.Product.Name(),
			ReleaseStatus: string(rel.Status()),
			Version:       rel.Version(),
			LatestVersion: uc.latestVersion(ctx, rel),
			MainClass:     relFile.MainClassName,
		},
	}
}

func (uc *ClassloaderUseCase) resolveRelease(ctx context.Context, cmd ClassloaderCommand, out *GateOutcome) (*product.Release, bool) {
	var rel *product.Release
	var err error
	if cmd.Version != "" {
		rel, err = uc.products.GetReleaseByVersion(ctx, out.Product.ID(), cmd.Version)
	} else {
		rel, err = uc.products.GetLatestRelease(ctx, out.Product.ID(), cmd.Branch)
	}
	if err != nil {
		if errors.Is(err, product.ErrReleaseNotFound) {
			out.Result = verification.Fail(verification.StatusReleaseNotFound)
			return nil, false
		}
		uc.logger.Errorw("release lookup failed", "error", err, "product_sid", cmd.ProductSID)
		out.Result = verification.Fail(verification.StatusInternalServerError)
		return nil, false
	}
	return rel, true
}

// latestVersion is best effort header data; a lookup failure never fails the
// request.
func (uc *ClassloaderUseCase) latestVersion(ctx context.Context, rel *product.Release) string {
	if rel.Latest() {
		return rel.Version()
	}
	latest, err := uc.products.GetLatestRelease(ctx, rel.ProductID(), rel.Branch())
	if err != nil {
		return ""
	}
	// The latest flag can lag behind a hotfix; never advertise a downgrade.
	if version.IsNewer(latest.Version(), rel.Version()) {
		return rel.Version()
	}
	return latest.Version()
}
