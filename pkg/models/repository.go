package models

import "path/filepath"

// ProductLayout defines the directory structure of one product
type ProductLayout struct {
	RootDir            string // <source root>/<product>
	VersionsDir        string // Version/
	VersionIndexFile   string // Version/Index
	RecentIndexFile    string // Index
	LatestFile         string // Latest
	LatestDownloadFile string // LatestDownload
}

// NewProductLayout creates the layout for a product directory
func NewProductLayout(rootDir string) *ProductLayout {
	return &ProductLayout{
		RootDir:            rootDir,
		VersionsDir:        "Version",
		VersionIndexFile:   "Index",
		RecentIndexFile:    "Index",
		LatestFile:         "Latest",
		LatestDownloadFile: "LatestDownload",
	}
}

// VersionsPath returns the absolute path of the versions directory
func (l *ProductLayout) VersionsPath() string {
	return filepath.Join(l.RootDir, l.VersionsDir)
}

// VersionIndexPath returns the absolute path of Version/Index
func (l *ProductLayout) VersionIndexPath() string {
	return filepath.Join(l.RootDir, l.VersionsDir, l.VersionIndexFile)
}

// RecentIndexPath returns the absolute path of the recent index
func (l *ProductLayout) RecentIndexPath() string {
	return filepath.Join(l.RootDir, l.RecentIndexFile)
}

// LatestPath returns the absolute path of Latest
func (l *ProductLayout) LatestPath() string {
	return filepath.Join(l.RootDir, l.LatestFile)
}

// LatestDownloadPath returns the absolute path of LatestDownload
func (l *ProductLayout) LatestDownloadPath() string {
	return filepath.Join(l.RootDir, l.LatestDownloadFile)
}
