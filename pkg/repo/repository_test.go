package repo

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestRepo(t *testing.T, recent int) *Repository {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, CreateProduct(root, "App"))
	r, err := New(root, "App", Options{RecentIndexLength: recent})
	require.NoError(t, err)
	return r
}

func record(code int64, name string) *models.VersionInfo {
	return &models.VersionInfo{
		VersionCode: code,
		VersionName: name,
		ChangeLog:   "changes in " + name,
		DownloadSource: []models.DownloadSource{
			{SourceName: "mirror", URL: "https://example.com/" + name, IsDirectLink: false},
		},
	}
}

func TestNew_MissingProduct(t *testing.T) {
	_, err := New(t.TempDir(), "Nope", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestNew_DefaultRecentLength(t *testing.T) {
	r := newTestRepo(t, 0)
	assert.Equal(t, DefaultRecentIndexLength, r.RecentIndexLength())
}

func TestLayout(t *testing.T) {
	r := newTestRepo(t, 15)
	root := r.ProductRoot()
	assert.Equal(t, filepath.Join(root, "Version"), r.VersionsDir())
	assert.Equal(t, filepath.Join(root, "Version", "42"), r.VersionFile(42))
	assert.Equal(t, filepath.Join(root, "Version", "Index"), r.VersionIndexFile())
	assert.Equal(t, filepath.Join(root, "Index"), r.RecentIndexFile())
	assert.Equal(t, filepath.Join(root, "Latest"), r.LatestFile())
	assert.Equal(t, filepath.Join(root, "LatestDownload"), r.LatestDownloadFile())
	assert.Equal(t, "App", r.Product())
}

func TestListVersionCodes(t *testing.T) {
	r := newTestRepo(t, 15)

	codes, err := r.ListVersionCodes(true)
	require.NoError(t, err)
	assert.Empty(t, codes)

	for _, code := range []int64{9, 100, 10, 2} {
		require.NoError(t, r.SaveVersion(record(code, "x")))
	}
	// noise that must be ignored
	require.NoError(t, os.WriteFile(filepath.Join(r.VersionsDir(), "Index"), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(r.VersionsDir(), "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(r.VersionsDir(), "007"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(r.VersionsDir(), "55"), 0755))

	desc, err := r.ListVersionCodes(true)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 10, 9, 2}, desc)

	asc, err := r.ListVersionCodes(false)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 9, 10, 100}, asc)

	has, err := r.HasVersionCode(10)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = r.HasVersionCode(55)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReadSaveDeleteVersion(t *testing.T) {
	r := newTestRepo(t, 15)

	_, err := r.ReadVersion(1)
	assert.True(t, errors.IsNotFound(err))

	info := record(1, "1.0")
	require.NoError(t, r.SaveVersion(info))

	got, err := r.ReadVersion(1)
	require.NoError(t, err)
	assert.True(t, got.Equal(info))

	// overwrite is allowed
	info.ChangeLog = "updated"
	require.NoError(t, r.SaveVersion(info))
	got, err = r.ReadVersion(1)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.ChangeLog)

	require.NoError(t, r.DeleteVersion(1))
	err = r.DeleteVersion(1)
	assert.True(t, errors.IsNotFound(err))
}

func TestSaveVersion_RejectsNegativeCode(t *testing.T) {
	r := newTestRepo(t, 15)
	err := r.SaveVersion(record(-1, "bad"))
	assert.True(t, errors.IsInvalidInput(err))
}

func TestReadVersion_Malformed(t *testing.T) {
	r := newTestRepo(t, 15)
	require.NoError(t, os.MkdirAll(r.VersionsDir(), 0755))
	require.NoError(t, os.WriteFile(r.VersionFile(3), []byte(`{"versionCode":3}`), 0644))

	_, err := r.ReadVersion(3)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedRecord(err))
}

func TestRefreshAll_EmptyProduct(t *testing.T) {
	r := newTestRepo(t, 15)
	require.NoError(t, r.RefreshAll())

	codes, err := r.ReadVersionIndex()
	require.NoError(t, err)
	assert.Empty(t, codes)

	recent, err := r.ReadRecentIndex()
	require.NoError(t, err)
	assert.Empty(t, recent)

	assert.NoFileExists(t, r.LatestFile())
	assert.NoFileExists(t, r.LatestDownloadFile())
}

func TestRefreshAll_DerivedFiles(t *testing.T) {
	r := newTestRepo(t, 2)
	require.NoError(t, r.SaveVersion(record(1, "1.0")))
	v3 := record(3, "3.0")
	v3.ForceUpdate = true
	require.NoError(t, r.SaveVersion(v3))
	require.NoError(t, r.SaveVersion(record(2, "2.0")))

	require.NoError(t, r.RefreshAll())

	codes, err := r.ReadVersionIndex()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, codes)

	recent, err := r.ReadRecentIndex()
	require.NoError(t, err)
	assert.Equal(t, []models.VersionIndex{
		{Version: 3, ForceUpdate: true},
		{Version: 2, ForceUpdate: false},
	}, recent)

	latest, err := r.ReadLatest()
	require.NoError(t, err)
	assert.True(t, latest.Equal(v3))

	download, err := r.ReadLatestDownload()
	require.NoError(t, err)
	assert.Equal(t, int64(3), download.VersionCode)
	require.NotNil(t, download.URL)
	assert.Equal(t, "https://example.com/3.0", *download.URL)
}

func TestRefreshLatest_RemovesFilesWhenEmpty(t *testing.T) {
	r := newTestRepo(t, 15)
	require.NoError(t, r.SaveVersion(record(1, "1.0")))
	require.NoError(t, r.RefreshAll())
	assert.FileExists(t, r.LatestFile())

	require.NoError(t, r.DeleteVersion(1))
	require.NoError(t, r.RefreshLatest())
	assert.NoFileExists(t, r.LatestFile())
	assert.NoFileExists(t, r.LatestDownloadFile())

	// already gone is fine
	require.NoError(t, r.RefreshLatest())
}

func TestRefreshAll_Idempotent(t *testing.T) {
	r := newTestRepo(t, 3)
	for _, code := range []int64{5, 1, 7, 3} {
		require.NoError(t, r.SaveVersion(record(code, "n")))
	}

	require.NoError(t, r.RefreshAll())
	first := snapshot(t, r)
	require.NoError(t, r.RefreshAll())
	assert.Equal(t, first, snapshot(t, r))
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	r := newTestRepo(t, 15)
	require.NoError(t, r.SaveVersion(record(1, "1.0")))
	require.NoError(t, r.RefreshAll())

	for _, dir := range []string{r.ProductRoot(), r.VersionsDir()} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-")
		}
	}
}

// snapshot returns the raw bytes of every derived file
func snapshot(t *testing.T, r *Repository) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, path := range []string{r.VersionIndexFile(), r.RecentIndexFile(), r.LatestFile(), r.LatestDownloadFile()} {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
		out[filepath.Base(path)+":"+path] = string(data)
	}
	return out
}

func TestRefreshAll_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root, err := os.MkdirTemp("", "updategen-prop-*")
		if err != nil {
			rt.Fatalf("temp dir: %v", err)
		}
		defer os.RemoveAll(root)

		if err := CreateProduct(root, "App"); err != nil {
			rt.Fatalf("create: %v", err)
		}
		n := rapid.IntRange(1, 6).Draw(rt, "recent")
		r, err := New(root, "App", Options{RecentIndexLength: n})
		if err != nil {
			rt.Fatalf("open: %v", err)
		}

		codes := rapid.SliceOfNDistinct(rapid.Int64Range(0, 500), 0, 12, rapid.ID[int64]).Draw(rt, "codes")
		force := make(map[int64]bool)
		for _, code := range codes {
			info := record(code, "v")
			info.ForceUpdate = rapid.Bool().Draw(rt, "force")
			force[code] = info.ForceUpdate
			if err := r.SaveVersion(info); err != nil {
				rt.Fatalf("save: %v", err)
			}
		}
		if err := r.RefreshAll(); err != nil {
			rt.Fatalf("refresh: %v", err)
		}

		want := append([]int64(nil), codes...)
		sort.Slice(want, func(i, j int) bool { return want[i] > want[j] })

		listed, err := r.ListVersionCodes(true)
		if err != nil {
			rt.Fatalf("list: %v", err)
		}
		if !equalCodes(listed, want) {
			rt.Fatalf("listed %v, want %v", listed, want)
		}

		recent, err := r.ReadRecentIndex()
		if err != nil {
			rt.Fatalf("recent: %v", err)
		}
		expectLen := len(want)
		if expectLen > n {
			expectLen = n
		}
		if len(recent) != expectLen {
			rt.Fatalf("recent has %d entries, want %d", len(recent), expectLen)
		}
		for i, entry := range recent {
			if entry.Version != want[i] || entry.ForceUpdate != force[want[i]] {
				rt.Fatalf("recent[%d] = %+v, want code %d", i, entry, want[i])
			}
		}

		latest, err := r.ReadLatest()
		if len(want) == 0 {
			if !errors.IsNotFound(err) {
				rt.Fatalf("latest should be absent, got %v", err)
			}
			return
		}
		if err != nil {
			rt.Fatalf("latest: %v", err)
		}
		if latest.VersionCode != want[0] {
			rt.Fatalf("latest is %d, want %d", latest.VersionCode, want[0])
		}

		report, err := r.Verify()
		if err != nil {
			rt.Fatalf("verify: %v", err)
		}
		if !report.OK() {
			rt.Fatalf("verify found issues after refresh: %+v", report.Issues)
		}
	})
}
