package service

import (
	"fmt"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/huanfeng/updategen/pkg/repo"
	"go.uber.org/zap"
)

// DecisionKind names the question a Decision is asked
type DecisionKind int

const (
	// DecideOldVersion asks whether to add a version older than the latest
	DecideOldVersion DecisionKind = iota
	// DecideReplace asks whether to overwrite an existing version
	DecideReplace
	// DecideDelete asks whether to delete a version
	DecideDelete
)

func (k DecisionKind) String() string {
	switch k {
	case DecideOldVersion:
		return "old_version"
	case DecideReplace:
		return "replace"
	case DecideDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// DecisionContext is what a Decision gets to look at
type DecisionContext struct {
	Kind     DecisionKind
	Product  string
	Incoming *models.VersionInfo // nil for deletes
	Existing *models.VersionInfo // the record replaced or deleted, or the current latest
}

// Decision answers a confirmation. A nil Decision is never asked and the
// operation proceeds.
type Decision func(ctx DecisionContext) bool

// Always returns a Decision that gives the same answer every time
func Always(answer bool) Decision {
	return func(DecisionContext) bool { return answer }
}

// Outcome of a mutating operation
type Outcome int

const (
	Declined Outcome = iota
	Added
	Replaced
	Deleted
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	case Deleted:
		return "deleted"
	default:
		return "declined"
	}
}

// Result reports what a mutating operation did
type Result struct {
	Outcome  Outcome
	Info     *models.VersionInfo // the record added, replaced or deleted
	Previous *models.VersionInfo // the overwritten record for replaces
}

// Declined reports whether a decision stopped the operation
func (r Result) Declined() bool {
	return r.Outcome == Declined
}

// Err returns a UserDeclined error for declined results and nil otherwise
func (r Result) Err() error {
	if !r.Declined() {
		return nil
	}
	code := int64(-1)
	if r.Info != nil {
		code = r.Info.VersionCode
	}
	return errors.NewUserDeclinedError("DECLINED",
		fmt.Sprintf("operation on version %d declined", code))
}

// Service applies the add, replace and delete policies to one product
type Service struct {
	repo   *repo.Repository
	logger *zap.Logger
}

// New creates a service for an opened product
func New(r *repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   r,
		logger: logger.With(zap.String("product", r.Product())),
	}
}

// Open resolves a product under sourceRoot and wraps it in a Service
func Open(sourceRoot, product string, opts repo.Options) (*Service, error) {
	r, err := repo.New(sourceRoot, product, opts)
	if err != nil {
		return nil, err
	}
	return New(r, opts.Logger), nil
}

// Product returns the product name
func (s *Service) Product() string { return s.repo.Product() }

// Repository exposes the underlying repository for read-only callers
func (s *Service) Repository() *repo.Repository { return s.repo }

// IsAddingOldVersion reports whether info is older than the current latest
func (s *Service) IsAddingOldVersion(info *models.VersionInfo) (bool, error) {
	latest, err := s.repo.Latest()
	if err != nil {
		return false, err
	}
	return latest != nil && info.VersionCode < latest.VersionCode, nil
}

// AddVersion stores info. Without replaceable an existing code fails with
// DuplicateVersion; with it the stored record is overwritten once
// confirmReplace agrees.
func (s *Service) AddVersion(info *models.VersionInfo, replaceable bool, confirmOldVersion, confirmReplace Decision) (Result, error) {
	if err := info.Validate(); err != nil {
		return Result{}, err
	}

	if !replaceable {
		old, err := s.IsAddingOldVersion(info)
		if err != nil {
			return Result{}, err
		}
		if old && confirmOldVersion != nil {
			latest, err := s.repo.Latest()
			if err != nil {
				return Result{}, err
			}
			if !confirmOldVersion(s.decisionContext(DecideOldVersion, info, latest)) {
				s.logger.Info("Old version add declined", zap.Int64("code", info.VersionCode))
				return Result{Outcome: Declined, Info: info}, nil
			}
		}
	}

	exists, err := s.repo.HasVersionCode(info.VersionCode)
	if err != nil {
		return Result{}, err
	}

	if exists && !replaceable {
		return Result{}, errors.NewDuplicateVersionError("VERSION_EXISTS",
			fmt.Sprintf("version %d already exists in %s", info.VersionCode, s.Product())).
			WithContext("product", s.Product())
	}

	var previous *models.VersionInfo
	if exists {
		previous, err = s.repo.ReadVersion(info.VersionCode)
		if err != nil {
			if errors.IsNotFound(err) {
				return Result{}, err
			}
			return Result{}, errors.WrapError(err, errors.TypeOf(err), "EXISTING_UNREADABLE",
				fmt.Sprintf("failed to read existing version %d", info.VersionCode))
		}
		if confirmReplace != nil && !confirmReplace(s.decisionContext(DecideReplace, info, previous)) {
			s.logger.Info("Replace declined", zap.Int64("code", info.VersionCode))
			return Result{Outcome: Declined, Info: info, Previous: previous}, nil
		}
	}

	if err := s.repo.SaveVersion(info); err != nil {
		return Result{}, err
	}
	if err := s.refreshAfterCommit(info.VersionCode); err != nil {
		return Result{}, err
	}

	outcome := Added
	if exists {
		outcome = Replaced
	}
	s.logger.Info("Version stored",
		zap.Int64("code", info.VersionCode),
		zap.Stringer("outcome", outcome))
	return Result{Outcome: outcome, Info: info, Previous: previous}, nil
}

// DeleteVersion removes the record for code once confirmDelete agrees
func (s *Service) DeleteVersion(code int64, confirmDelete Decision) (Result, error) {
	info, err := s.repo.ReadVersion(code)
	if err != nil {
		return Result{}, err
	}

	if confirmDelete != nil && !confirmDelete(s.decisionContext(DecideDelete, nil, info)) {
		s.logger.Info("Delete declined", zap.Int64("code", code))
		return Result{Outcome: Declined, Info: info}, nil
	}

	if err := s.repo.DeleteVersion(code); err != nil {
		return Result{}, err
	}
	if err := s.refreshAfterCommit(code); err != nil {
		return Result{}, err
	}

	s.logger.Info("Version deleted", zap.Int64("code", code))
	return Result{Outcome: Deleted, Info: info}, nil
}

// GetVersions returns the stored version codes in ascending order
func (s *Service) GetVersions() ([]int64, error) {
	return s.repo.ListVersionCodes(false)
}

// RefreshAll rebuilds every derived file
func (s *Service) RefreshAll() error { return s.repo.RefreshAll() }

// RefreshIndex rebuilds Version/Index and the recent index
func (s *Service) RefreshIndex() error { return s.repo.RefreshIndex() }

// RefreshLatest rebuilds Latest and LatestDownload
func (s *Service) RefreshLatest() error { return s.repo.RefreshLatest() }

// Verify runs the consistency check
func (s *Service) Verify() (*repo.VerifyReport, error) { return s.repo.Verify() }

// refreshAfterCommit rebuilds derived state after a record changed. The
// record change stands even when this fails; a later refresh repairs it.
func (s *Service) refreshAfterCommit(code int64) error {
	if err := s.repo.RefreshAll(); err != nil {
		s.logger.Error("Refresh after change failed",
			zap.Int64("code", code),
			zap.Error(err))
		return errors.WrapError(err, errors.ErrorTypeFileSystem, "REFRESH_FAILED",
			fmt.Sprintf("version %d changed but derived files were not refreshed", code)).
			WithSuggestion("Run 'updategen refresh all -p " + s.Product() + "'")
	}
	return nil
}

func (s *Service) decisionContext(kind DecisionKind, incoming, existing *models.VersionInfo) DecisionContext {
	return DecisionContext{
		Kind:     kind,
		Product:  s.Product(),
		Incoming: incoming,
		Existing: existing,
	}
}
