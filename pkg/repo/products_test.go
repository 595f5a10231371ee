package repo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "MyApp", false},
		{"with space", "My App", false},
		{"unicode", "应用", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"question", "a?", true},
		{"star", "a*", true},
		{"colon", "a:b", true},
		{"angle", "<a>", true},
		{"quote", `"a"`, true},
		{"pipe", "a|b", true},
		{"dotdot", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsInvalidInput(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateProduct(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Updates")

	assert.False(t, ProductExists(root, "App"))
	require.NoError(t, CreateProduct(root, "App"))
	assert.True(t, ProductExists(root, "App"))

	err := CreateProduct(root, "App")
	assert.True(t, errors.IsAlreadyExists(err))

	err = CreateProduct(root, "a/b")
	assert.True(t, errors.IsInvalidInput(err))

	// a plain file with the product name also blocks creation
	require.NoError(t, os.WriteFile(filepath.Join(root, "File"), nil, 0644))
	err = CreateProduct(root, "File")
	assert.True(t, errors.IsAlreadyExists(err))
	assert.False(t, ProductExists(root, "File"))
}

func TestListProducts(t *testing.T) {
	root := t.TempDir()

	missing, err := ListProducts(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	for _, name := range []string{"Zeta", "alpha", "Beta"} {
		require.NoError(t, CreateProduct(root, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), nil, 0644))

	products, err := ListProducts(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Zeta", "alpha"}, products)
}

func TestListTemplates(t *testing.T) {
	dir := t.TempDir()

	missing, err := ListTemplates(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	for _, name := range []string{"b.json", "a.json", ".hidden.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.json"), 0755))

	templates, err := ListTemplates(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json"}, templates)
}

func TestNewVersionTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "NewVersions")

	path, err := NewVersionTemplate(dir, "release")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "release.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"versionCode\": 0")

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 5)

	info, err := ReadVersionInfoFile(path)
	require.NoError(t, err)
	assert.True(t, info.Equal(models.EmptyVersionInfo()))

	// suffix is not doubled and collisions are rejected
	_, err = NewVersionTemplate(dir, "release.json")
	assert.True(t, errors.IsAlreadyExists(err))

	_, err = NewVersionTemplate(dir, "bad*name")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestReadVersionInfoFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadVersionInfoFile(filepath.Join(dir, "none.json"))
	assert.True(t, errors.IsNotFound(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"versionCode":"x"}`), 0644))
	_, err = ReadVersionInfoFile(bad)
	assert.True(t, errors.IsMalformedRecord(err))
}

func TestParseVersionFileName(t *testing.T) {
	tests := []struct {
		in   string
		code int64
		ok   bool
	}{
		{"0", 0, true},
		{"15", 15, true},
		{"007", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"Index", 0, false},
		{"1.json", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		code, ok := ParseVersionFileName(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.code, code, tt.in)
	}
}

func TestPaddedVersionCode(t *testing.T) {
	code, ok := paddedVersionCode("010")
	assert.True(t, ok)
	assert.Equal(t, int64(10), code)

	code, ok = paddedVersionCode("00")
	assert.True(t, ok)
	assert.Equal(t, int64(0), code)

	for _, name := range []string{"10", "0", "Index", "-010", ""} {
		_, ok := paddedVersionCode(name)
		assert.False(t, ok, name)
	}
}
