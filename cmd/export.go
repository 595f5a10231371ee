package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	exportProduct string
	exportFormat  string
	exportOutput  string
	exportFields  []string
)

var defaultExportFields = []string{"version_code", "version_name", "force_update", "download_url"}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every version record of a product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var write func(io.Writer, []*models.VersionInfo) error
		switch strings.ToLower(exportFormat) {
		case "json":
			write = exportJSON
		case "yaml", "yml":
			write = exportYAML
		case "csv":
			write = func(w io.Writer, records []*models.VersionInfo) error {
				return exportCSV(w, records, exportFields)
			}
		default:
			return errors.NewInvalidInputError("UNKNOWN_FORMAT",
				i18n.T("cli.format.unknown", map[string]interface{}{"Format": exportFormat, "Formats": "json, yaml, csv"}))
		}

		svc, err := openService(exportProduct)
		if err != nil {
			return err
		}
		codes, err := svc.GetVersions()
		if err != nil {
			return err
		}
		records := make([]*models.VersionInfo, 0, len(codes))
		for _, code := range codes {
			info, err := svc.Repository().ReadVersion(code)
			if err != nil {
				return err
			}
			records = append(records, info)
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportOutput != "" {
			if dir := filepath.Dir(exportOutput); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return errors.NewFileSystemError(err, "EXPORT_DIR_FAILED", "failed to create output directory").
						WithContext("path", dir)
				}
			}
			file, err := os.Create(exportOutput)
			if err != nil {
				return errors.NewFileSystemError(err, "EXPORT_CREATE_FAILED", "failed to create output file").
					WithContext("path", exportOutput)
			}
			defer file.Close()
			out = file
		}

		if err := write(out, records); err != nil {
			return errors.NewFileSystemError(err, "EXPORT_FAILED", "failed to write export")
		}

		if exportOutput != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ "+i18n.T("cli.export.done", map[string]interface{}{
				"Count": len(records),
				"Path":  exportOutput,
			}))
		}
		return nil
	},
}

func exportJSON(w io.Writer, records []*models.VersionInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func exportYAML(w io.Writer, records []*models.VersionInfo) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

func exportCSV(w io.Writer, records []*models.VersionInfo, fields []string) error {
	if len(fields) == 0 {
		fields = defaultExportFields
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(fields); err != nil {
		return err
	}
	for _, info := range records {
		row := make([]string, 0, len(fields))
		for _, field := range fields {
			row = append(row, csvField(info, field))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvField(info *models.VersionInfo, field string) string {
	switch field {
	case "version_code":
		return strconv.FormatInt(info.VersionCode, 10)
	case "version_name":
		return info.VersionName
	case "force_update":
		return strconv.FormatBool(info.ForceUpdate)
	case "change_log":
		return info.ChangeLog
	case "download_url":
		if src := info.RecommendedSource(); src != nil {
			return src.URL
		}
		return ""
	case "sources":
		names := make([]string, 0, len(info.DownloadSource))
		for _, src := range info.DownloadSource {
			names = append(names, src.SourceName)
		}
		return strings.Join(names, ";")
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportProduct, "product", "p", "", "product to export")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json, yaml, csv)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringSliceVar(&exportFields, "fields", nil, "CSV columns (version_code, version_name, force_update, change_log, download_url, sources)")
	_ = exportCmd.MarkFlagRequired("product")
}
