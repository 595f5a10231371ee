package repo

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hashicorp/go-version"
	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/pkg/models"
	"go.uber.org/zap"
)

// IssueKind classifies a verification finding
type IssueKind string

const (
	IssueMalformedRecord  IssueKind = "malformed_record"
	IssueCodeMismatch     IssueKind = "code_mismatch"
	IssueIndexDrift       IssueKind = "index_drift"
	IssueMissingArtifact  IssueKind = "missing_artifact"
	IssueRecentIndexDrift IssueKind = "recent_index_drift"
	IssueLatestDrift      IssueKind = "latest_drift"
	IssueNameRegression   IssueKind = "name_regression"
	IssueStrayFile        IssueKind = "stray_file"
	IssuePaddedName       IssueKind = "padded_name"
)

// Severity of an issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one verification finding
type Issue struct {
	Kind     IssueKind `json:"kind" yaml:"kind"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Path     string    `json:"path" yaml:"path"`
	Message  string    `json:"message" yaml:"message"`
	Fixable  bool      `json:"fixable" yaml:"fixable"`
}

// VerifyReport collects the findings for one product
type VerifyReport struct {
	Product  string  `json:"product" yaml:"product"`
	Versions int     `json:"versions" yaml:"versions"`
	Issues   []Issue `json:"issues" yaml:"issues"`
}

// Errors returns the number of error-level issues
func (r *VerifyReport) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning-level issues
func (r *VerifyReport) Warnings() int {
	return len(r.Issues) - r.Errors()
}

// OK reports whether no error-level issue was found
func (r *VerifyReport) OK() bool {
	return r.Errors() == 0
}

// Fixable reports whether a refresh would resolve at least one issue
func (r *VerifyReport) Fixable() bool {
	for _, issue := range r.Issues {
		if issue.Fixable {
			return true
		}
	}
	return false
}

func (r *VerifyReport) add(kind IssueKind, severity Severity, path, msg string) {
	fixable := false
	switch kind {
	case IssueIndexDrift, IssueMissingArtifact, IssueRecentIndexDrift, IssueLatestDrift:
		fixable = true
	}
	r.Issues = append(r.Issues, Issue{
		Kind:     kind,
		Severity: severity,
		Path:     path,
		Message:  msg,
		Fixable:  fixable,
	})
}

// Verify checks the stored records and the derived files of the product
// against each other without changing anything on disk.
func (r *Repository) Verify() (*VerifyReport, error) {
	scan, err := scanVersions(r.VersionsDir())
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{Product: r.product, Versions: len(scan.Codes), Issues: []Issue{}}

	// Records, ascending
	records := make(map[int64]*models.VersionInfo, len(scan.Codes))
	for _, code := range scan.Codes {
		path := r.VersionFile(code)
		info, err := r.ReadVersion(code)
		if err != nil {
			if errors.IsMalformedRecord(err) {
				report.add(IssueMalformedRecord, SeverityError, path, err.Error())
				continue
			}
			return nil, err
		}
		if info.VersionCode != code {
			report.add(IssueCodeMismatch, SeverityError, path,
				fmt.Sprintf("file %d holds versionCode %d", code, info.VersionCode))
			continue
		}
		records[code] = info
	}

	for _, name := range scan.Others {
		if name == r.layout.VersionIndexFile {
			continue
		}
		path := filepath.Join(r.VersionsDir(), name)
		if code, ok := paddedVersionCode(name); ok {
			report.add(IssuePaddedName, SeverityWarning, path,
				fmt.Sprintf("file %q is ignored; rename it to %q to store version %d", name, strconv.FormatInt(code, 10), code))
			continue
		}
		report.add(IssueStrayFile, SeverityWarning, path,
			fmt.Sprintf("unexpected file %q in versions directory", name))
	}

	descCodes := make([]int64, len(scan.Codes))
	copy(descCodes, scan.Codes)
	sort.Slice(descCodes, func(i, j int) bool { return descCodes[i] > descCodes[j] })

	r.verifyVersionIndex(report, scan.Codes)
	r.verifyRecentIndex(report, descCodes, records)
	r.verifyLatest(report, descCodes, records)
	verifyNameOrder(report, scan.Codes, records, r.VersionFile)

	r.logger.Debug("Verified product",
		zap.Int("versions", report.Versions),
		zap.Int("errors", report.Errors()),
		zap.Int("warnings", report.Warnings()))
	return report, nil
}

func (r *Repository) verifyVersionIndex(report *VerifyReport, ascCodes []int64) {
	path := r.VersionIndexFile()
	stored, err := r.ReadVersionIndex()
	if err != nil {
		r.reportReadFailure(report, path, "version index", err)
		return
	}

	got := make([]int64, len(stored))
	copy(got, stored)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if !equalCodes(got, ascCodes) {
		report.add(IssueIndexDrift, SeverityError, path,
			fmt.Sprintf("version index lists %v, stored versions are %v", stored, ascCodes))
	}
}

func (r *Repository) verifyRecentIndex(report *VerifyReport, descCodes []int64, records map[int64]*models.VersionInfo) {
	path := r.RecentIndexFile()
	n := len(descCodes)
	if n > r.recentLength {
		n = r.recentLength
	}
	expected := make([]models.VersionIndex, 0, n)
	for _, code := range descCodes[:n] {
		info, ok := records[code]
		if !ok {
			// a broken record already has its own issue
			return
		}
		expected = append(expected, info.ToIndex())
	}

	stored, err := r.ReadRecentIndex()
	if err != nil {
		r.reportReadFailure(report, path, "recent index", err)
		return
	}

	if len(stored) != len(expected) {
		report.add(IssueRecentIndexDrift, SeverityError, path,
			fmt.Sprintf("recent index has %d entries, expected %d", len(stored), len(expected)))
		return
	}
	for i := range expected {
		if stored[i] != expected[i] {
			report.add(IssueRecentIndexDrift, SeverityError, path,
				fmt.Sprintf("recent index entry %d is %+v, expected %+v", i, stored[i], expected[i]))
			return
		}
	}
}

func (r *Repository) verifyLatest(report *VerifyReport, descCodes []int64, records map[int64]*models.VersionInfo) {
	latestPath := r.LatestFile()
	downloadPath := r.LatestDownloadFile()

	if len(descCodes) == 0 {
		if _, err := r.ReadLatest(); !errors.IsNotFound(err) {
			report.add(IssueLatestDrift, SeverityError, latestPath, "latest file exists but there are no versions")
		}
		if _, err := r.ReadLatestDownload(); !errors.IsNotFound(err) {
			report.add(IssueLatestDrift, SeverityError, downloadPath, "latest download file exists but there are no versions")
		}
		return
	}

	expected, ok := records[descCodes[0]]
	if !ok {
		return
	}

	latest, err := r.ReadLatest()
	if err != nil {
		r.reportReadFailure(report, latestPath, "latest", err)
	} else if !latest.Equal(expected) {
		report.add(IssueLatestDrift, SeverityError, latestPath,
			fmt.Sprintf("latest is version %d, expected version %d", latest.VersionCode, expected.VersionCode))
	}

	download, err := r.ReadLatestDownload()
	if err != nil {
		r.reportReadFailure(report, downloadPath, "latest download", err)
	} else {
		want := expected.ToDownload()
		if !download.Equal(&want) {
			report.add(IssueLatestDrift, SeverityError, downloadPath,
				fmt.Sprintf("latest download does not match version %d", expected.VersionCode))
		}
	}
}

// reportReadFailure files a derived artifact that could not be read. Both
// cases are repaired by a refresh.
func (r *Repository) reportReadFailure(report *VerifyReport, path, what string, err error) {
	if errors.IsNotFound(err) {
		report.add(IssueMissingArtifact, SeverityError, path, fmt.Sprintf("%s is missing", what))
		return
	}
	kind := IssueIndexDrift
	switch path {
	case r.RecentIndexFile():
		kind = IssueRecentIndexDrift
	case r.LatestFile(), r.LatestDownloadFile():
		kind = IssueLatestDrift
	}
	report.add(kind, SeverityError, path, fmt.Sprintf("%s is unreadable: %v", what, err))
}

// verifyNameOrder warns when a higher version code carries a lower version
// name. Names that do not parse as versions are skipped.
func verifyNameOrder(report *VerifyReport, ascCodes []int64, records map[int64]*models.VersionInfo, pathOf func(int64) string) {
	var (
		prev     *version.Version
		prevCode int64
	)
	for _, code := range ascCodes {
		info, ok := records[code]
		if !ok {
			continue
		}
		v, err := version.NewVersion(info.VersionName)
		if err != nil {
			continue
		}
		if prev != nil && v.LessThan(prev) {
			report.add(IssueNameRegression, SeverityWarning, pathOf(code),
				fmt.Sprintf("version %d is named %q, lower than %q of version %d",
					code, info.VersionName, prev.Original(), prevCode))
		}
		prev = v
		prevCode = code
	}
}

func equalCodes(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
