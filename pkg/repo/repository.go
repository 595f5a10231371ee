package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/pkg/models"
	"go.uber.org/zap"
)

// DefaultRecentIndexLength is the number of entries kept in the recent index
const DefaultRecentIndexLength = 15

// Options configures a Repository
type Options struct {
	RecentIndexLength int
	Logger            *zap.Logger
}

// Repository manages the on-disk records and derived files of one product
type Repository struct {
	layout       *models.ProductLayout
	product      string
	recentLength int
	logger       *zap.Logger
}

// New opens an existing product under sourceRoot
func New(sourceRoot, product string, opts Options) (*Repository, error) {
	if err := ValidateName(product); err != nil {
		return nil, err
	}

	productRoot := filepath.Join(sourceRoot, product)
	info, err := os.Stat(productRoot)
	if err != nil || !info.IsDir() {
		return nil, errors.NewNotFoundError("PRODUCT_NOT_FOUND",
			fmt.Sprintf("product %q not found", product)).
			WithContext("path", productRoot).
			WithSuggestion("Create it with 'updategen create product -n " + product + "'")
	}

	recentLength := opts.RecentIndexLength
	if recentLength <= 0 {
		recentLength = DefaultRecentIndexLength
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Repository{
		layout:       models.NewProductLayout(productRoot),
		product:      product,
		recentLength: recentLength,
		logger:       logger.With(zap.String("product", product)),
	}, nil
}

// Product returns the product name
func (r *Repository) Product() string { return r.product }

// ProductRoot returns the product directory
func (r *Repository) ProductRoot() string { return r.layout.RootDir }

// VersionsDir returns the directory holding one file per version
func (r *Repository) VersionsDir() string { return r.layout.VersionsPath() }

// VersionFile returns the record path for a version code
func (r *Repository) VersionFile(code int64) string {
	return filepath.Join(r.layout.VersionsPath(), strconv.FormatInt(code, 10))
}

// VersionIndexFile returns the path of the full version code list
func (r *Repository) VersionIndexFile() string { return r.layout.VersionIndexPath() }

// RecentIndexFile returns the path of the recent index
func (r *Repository) RecentIndexFile() string { return r.layout.RecentIndexPath() }

// LatestFile returns the path of the latest record
func (r *Repository) LatestFile() string { return r.layout.LatestPath() }

// LatestDownloadFile returns the path of the latest download projection
func (r *Repository) LatestDownloadFile() string { return r.layout.LatestDownloadPath() }

// RecentIndexLength returns the configured recent index size
func (r *Repository) RecentIndexLength() int { return r.recentLength }

// ListVersionCodes returns every stored version code in numeric order
func (r *Repository) ListVersionCodes(descending bool) ([]int64, error) {
	result, err := scanVersions(r.VersionsDir())
	if err != nil {
		return nil, err
	}
	codes := result.Codes
	if descending {
		sort.Slice(codes, func(i, j int) bool { return codes[i] > codes[j] })
	}
	return codes, nil
}

// HasVersionCode reports whether a record exists for code
func (r *Repository) HasVersionCode(code int64) (bool, error) {
	codes, err := r.ListVersionCodes(true)
	if err != nil {
		return false, err
	}
	for _, c := range codes {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

// ReadVersion loads the record for code
func (r *Repository) ReadVersion(code int64) (*models.VersionInfo, error) {
	path := r.VersionFile(code)
	data, err := readFile(path, "VERSION_NOT_FOUND", fmt.Sprintf("version %d", code))
	if err != nil {
		return nil, err
	}
	info, err := models.ParseVersionInfo(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return info, nil
}

// SaveVersion writes info to the file keyed by its version code, replacing
// any existing record.
func (r *Repository) SaveVersion(info *models.VersionInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	if err := writeJSON(r.VersionFile(info.VersionCode), info, false); err != nil {
		return err
	}
	r.logger.Debug("Saved version", zap.Int64("code", info.VersionCode))
	return nil
}

// DeleteVersion removes the record for code
func (r *Repository) DeleteVersion(code int64) error {
	path := r.VersionFile(code)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("VERSION_NOT_FOUND",
				fmt.Sprintf("version %d not found", code)).WithContext("path", path)
		}
		return errors.NewFileSystemError(err, "REMOVE_FAILED",
			fmt.Sprintf("failed to delete version %d", code)).WithContext("path", path)
	}
	r.logger.Debug("Deleted version", zap.Int64("code", code))
	return nil
}

// Latest returns the stored record with the greatest version code, or nil
// when the product has no versions.
func (r *Repository) Latest() (*models.VersionInfo, error) {
	codes, err := r.ListVersionCodes(true)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return r.ReadVersion(codes[0])
}

// ReadVersionIndex loads Version/Index
func (r *Repository) ReadVersionIndex() ([]int64, error) {
	path := r.VersionIndexFile()
	data, err := readFile(path, "VERSION_INDEX_NOT_FOUND", "version index")
	if err != nil {
		return nil, err
	}
	codes, err := models.ParseVersionCodeList(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return codes, nil
}

// ReadRecentIndex loads the recent index as written
func (r *Repository) ReadRecentIndex() ([]models.VersionIndex, error) {
	path := r.RecentIndexFile()
	data, err := readFile(path, "RECENT_INDEX_NOT_FOUND", "recent index")
	if err != nil {
		return nil, err
	}
	list, err := models.ParseVersionIndexList(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return list, nil
}

// ReadLatest loads the Latest file
func (r *Repository) ReadLatest() (*models.VersionInfo, error) {
	path := r.LatestFile()
	data, err := readFile(path, "LATEST_NOT_FOUND", "latest version")
	if err != nil {
		return nil, err
	}
	info, err := models.ParseVersionInfo(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return info, nil
}

// ReadLatestDownload loads the LatestDownload file
func (r *Repository) ReadLatestDownload() (*models.LatestDownload, error) {
	path := r.LatestDownloadFile()
	data, err := readFile(path, "LATEST_DOWNLOAD_NOT_FOUND", "latest download")
	if err != nil {
		return nil, err
	}
	d, err := models.ParseLatestDownload(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return d, nil
}

// expectedRecentIndex builds the recent index from the stored records
func (r *Repository) expectedRecentIndex(descCodes []int64) ([]models.VersionIndex, error) {
	n := len(descCodes)
	if n > r.recentLength {
		n = r.recentLength
	}
	indexes := make([]models.VersionIndex, 0, n)
	for _, code := range descCodes[:n] {
		info, err := r.ReadVersion(code)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, info.ToIndex())
	}
	return indexes, nil
}

// RefreshIndex rebuilds Version/Index and the recent index from the stored
// records.
func (r *Repository) RefreshIndex() error {
	codes, err := r.ListVersionCodes(true)
	if err != nil {
		return err
	}

	indexes, err := r.expectedRecentIndex(codes)
	if err != nil {
		return err
	}

	if err := writeJSON(r.VersionIndexFile(), codes, false); err != nil {
		return err
	}
	if err := writeJSON(r.RecentIndexFile(), indexes, false); err != nil {
		return err
	}

	r.logger.Debug("Refreshed index",
		zap.Int("versions", len(codes)),
		zap.Int("recent", len(indexes)))
	return nil
}

// RefreshLatest rewrites Latest and LatestDownload from the greatest stored
// record, or removes both when no record exists.
func (r *Repository) RefreshLatest() error {
	latest, err := r.Latest()
	if err != nil {
		return err
	}

	if latest == nil {
		if err := removeIfExists(r.LatestFile()); err != nil {
			return err
		}
		if err := removeIfExists(r.LatestDownloadFile()); err != nil {
			return err
		}
		r.logger.Debug("Removed latest files")
		return nil
	}

	if err := writeJSON(r.LatestFile(), latest, false); err != nil {
		return err
	}
	if err := writeJSON(r.LatestDownloadFile(), latest.ToDownload(), false); err != nil {
		return err
	}

	r.logger.Debug("Refreshed latest", zap.Int64("code", latest.VersionCode))
	return nil
}

// RefreshAll rebuilds every derived file
func (r *Repository) RefreshAll() error {
	if err := r.RefreshIndex(); err != nil {
		return err
	}
	return r.RefreshLatest()
}
