package menu

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/huanfeng/updategen/pkg/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := i18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fixture struct {
	root      string
	templates string
	out       *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	return &fixture{
		root:      filepath.Join(base, "Updates"),
		templates: filepath.Join(base, "NewVersions"),
		out:       &bytes.Buffer{},
	}
}

func (f *fixture) run(t *testing.T, script string) {
	t.Helper()
	prompter := NewConsolePrompter(strings.NewReader(script), f.out)
	m := New(prompter, f.out, Styles{})
	s := NewSession(m, f.out, Options{
		SourceRoot:        f.root,
		TemplatesDir:      f.templates,
		RecentIndexLength: 15,
		ShowBanner:        true,
	})
	require.NoError(t, s.Run())
}

func (f *fixture) writeTemplate(t *testing.T, name string, info *models.VersionInfo) {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.templates, 0755))
	data, err := json.Marshal(info)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.templates, name), data, 0644))
}

func (f *fixture) open(t *testing.T, product string) *repo.Repository {
	t.Helper()
	r, err := repo.New(f.root, product, repo.Options{})
	require.NoError(t, err)
	return r
}

func TestSession_NewProductAndTemplate(t *testing.T) {
	f := newFixture(t)

	f.run(t, strings.Join([]string{
		"bad/name", // refused, asked again
		"App",
		"2", // add version: no templates yet
		"release",
		"0", // exit
	}, "\n")+"\n")

	out := f.out.String()
	assert.Contains(t, out, "Update generator")
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "New product 'App' created")
	assert.Contains(t, out, "Current product: App")
	assert.Contains(t, out, "New version template created in")
	assert.True(t, repo.ProductExists(f.root, "App"))
	assert.FileExists(t, filepath.Join(f.templates, "release.json"))
}

func TestSession_AddListDelete(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, repo.CreateProduct(f.root, "App"))
	f.writeTemplate(t, "v10.json", &models.VersionInfo{VersionCode: 10, VersionName: "1.0"})
	f.writeTemplate(t, "v5.json", &models.VersionInfo{VersionCode: 5, VersionName: "0.9"})

	f.run(t, strings.Join([]string{
		"1",      // choose App
		"2", "1", // add v10.json
		"2", "2", // add v5.json, an old version
		"maybe", "y", // invalid answer re-asks
		"1",        // list
		"4", "abc", // delete with a bad code
		"4", "99", // delete an unknown code
		"4", "10", "", // delete declined by default
		"4", "10", "yes",
		"0",
	}, "\n")+"\n")

	out := f.out.String()
	assert.Contains(t, out, "New version '1.0' (10) added!")
	assert.Contains(t, out, "Are you sure to add an old version '0.9' (5)?")
	assert.Contains(t, out, "Unknown input! Input should be 'y, yes, n or no'!")
	assert.Contains(t, out, "New version '0.9' (5) added!")
	assert.Contains(t, out, " 5\t10")
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Unknown version code 99!")
	assert.Contains(t, out, "Cancelled, nothing changed.")
	assert.Contains(t, out, "Version '1.0' (10) deleted!")

	r := f.open(t, "App")
	codes, err := r.ListVersionCodes(false)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, codes)

	latest, err := r.ReadLatest()
	require.NoError(t, err)
	assert.Equal(t, int64(5), latest.VersionCode)
}

func TestSession_ReplaceAndDuplicate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, repo.CreateProduct(f.root, "App"))
	f.writeTemplate(t, "a.json", &models.VersionInfo{VersionCode: 1, VersionName: "1.0"})
	f.writeTemplate(t, "b.json", &models.VersionInfo{VersionCode: 1, VersionName: "1.0-hotfix"})

	f.run(t, strings.Join([]string{
		"1",
		"2", "1", // add a.json
		"2", "2", // add b.json: duplicate
		"3", "2", "n", // replace declined
		"3", "2", "y", // replace confirmed
		"5", // refresh all
		"0",
	}, "\n")+"\n")

	out := f.out.String()
	assert.Contains(t, out, "already exists")
	assert.Contains(t, out, "Are you sure to replace '1.0' (1) with '1.0-hotfix' (1)?")
	assert.Contains(t, out, "New version '1.0-hotfix' (1) replaced!")
	assert.Contains(t, out, "Version index refreshed!")
	assert.Contains(t, out, "Latest info refreshed!")

	latest, err := f.open(t, "App").ReadLatest()
	require.NoError(t, err)
	assert.Equal(t, "1.0-hotfix", latest.VersionName)
}

func TestSession_EOFDuringConfirmation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, repo.CreateProduct(f.root, "App"))
	r := f.open(t, "App")
	require.NoError(t, r.SaveVersion(&models.VersionInfo{VersionCode: 3, VersionName: "3"}))
	require.NoError(t, r.RefreshAll())

	// input ends while asking for the delete confirmation
	f.run(t, "1\n4\n3\n")

	has, err := r.HasVersionCode(3)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSession_EOFAtStart(t *testing.T) {
	f := newFixture(t)
	f.run(t, "")
	assert.False(t, repo.ProductExists(f.root, ""))
}

func TestSession_EmptyProductNameCancels(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, repo.CreateProduct(f.root, "App"))

	f.run(t, strings.Join([]string{
		"0",   // new product
		"App", // exists, asked again
		"",
		"Other",
	}, "\n")+"\n")

	out := f.out.String()
	assert.Contains(t, out, "Cancelled, nothing changed.")
	assert.NotContains(t, out, "Current product:")
	products, err := repo.ListProducts(f.root)
	require.NoError(t, err)
	assert.Equal(t, []string{"App"}, products)
}

func TestChoose_InvalidThenValid(t *testing.T) {
	out := &bytes.Buffer{}
	m := New(NewConsolePrompter(strings.NewReader("x\n7\n-1\n2\n"), out), out, Styles{})

	idx, err := m.Choose("Pick", []string{"a", "b"}, "<none>")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, strings.Count(out.String(), "Invalid input!"))
	assert.Equal(t, 2, strings.Count(out.String(), "Unknown input!"))
	assert.Contains(t, out.String(), "1 -> a\n2 -> b\n0 -> <none>\n")
}

func TestChoose_Otherwise(t *testing.T) {
	out := &bytes.Buffer{}
	m := New(NewConsolePrompter(strings.NewReader("0"), out), out, Styles{})

	idx, err := m.Choose("Pick", []string{"a"}, "<none>")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestWriteVersions(t *testing.T) {
	var buf bytes.Buffer
	WriteVersions(&buf, nil)
	assert.Equal(t, "No versions available!\n", buf.String())

	buf.Reset()
	codes := make([]int64, 0, 12)
	for i := int64(1); i <= 12; i++ {
		codes = append(codes, i)
	}
	WriteVersions(&buf, codes)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Versions:", lines[0])
	assert.Equal(t, " 1\t 2\t 3\t 4\t 5\t 6\t 7\t 8\t 9\t10", lines[1])
	assert.Equal(t, "11\t12", lines[2])
	assert.Equal(t, "Total: 12", lines[3])
}

func TestParseVersionCode(t *testing.T) {
	for input, want := range map[string]bool{
		"0": true, "42": true, "007": true,
		"": false, "-1": false, "+1": false, "1.5": false, "abc": false,
	} {
		_, ok := parseVersionCode(input)
		assert.Equal(t, want, ok, input)
	}
}
