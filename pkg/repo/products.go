package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/pkg/models"
)

// reservedChars may not appear in product or template names
const reservedChars = `/\?*:<>"|`

// ValidateName checks a product or template name
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewInvalidInputError("EMPTY_NAME", "name must not be empty")
	}
	if i := strings.IndexAny(name, reservedChars); i >= 0 {
		return errors.NewInvalidInputError("RESERVED_CHARACTER",
			fmt.Sprintf("name %q contains reserved character %q", name, name[i])).
			WithContext("reserved", reservedChars)
	}
	if name == "." || name == ".." {
		return errors.NewInvalidInputError("RESERVED_NAME", fmt.Sprintf("name %q is reserved", name))
	}
	return nil
}

// ProductExists reports whether root/name is a directory
func ProductExists(root, name string) bool {
	info, err := os.Stat(filepath.Join(root, name))
	return err == nil && info.IsDir()
}

// CreateProduct creates an empty product directory, and root if needed
func CreateProduct(root, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	path := filepath.Join(root, name)
	if _, err := os.Stat(path); err == nil {
		return errors.NewAlreadyExistsError("PRODUCT_EXISTS",
			fmt.Sprintf("product %q already exists", name)).WithContext("path", path)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.NewFileSystemError(err, "MKDIR_FAILED",
			fmt.Sprintf("failed to create product %q", name)).WithContext("path", path)
	}
	return nil
}

// ListProducts returns the product directory names under root
func ListProducts(root string) ([]string, error) {
	return (&Scanner{Kind: KindDir}).Scan(root)
}

// ListTemplates returns the version template files in dir
func ListTemplates(dir string) ([]string, error) {
	return (&Scanner{Kind: KindFile, Include: []string{"*.json"}}).Scan(dir)
}

// NewVersionTemplate writes an empty record to dir/name(.json) for hand
// editing and returns its path.
func NewVersionTemplate(dir, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", errors.NewAlreadyExistsError("TEMPLATE_EXISTS",
			fmt.Sprintf("template %q already exists", name)).WithContext("path", path)
	}

	if err := writeJSON(path, models.EmptyVersionInfo(), true); err != nil {
		return "", err
	}
	return path, nil
}

// ReadVersionInfoFile loads a record from an arbitrary path, usually a
// hand-edited template.
func ReadVersionInfoFile(path string) (*models.VersionInfo, error) {
	data, err := readFile(path, "FILE_NOT_FOUND", fmt.Sprintf("file %s", path))
	if err != nil {
		return nil, err
	}
	info, err := models.ParseVersionInfo(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return info, nil
}
