package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	infoProduct string
	infoCode    int64
	infoFormat  string
)

// infoView is what `info` prints in machine formats
type infoView struct {
	Product     string                `json:"product" yaml:"product"`
	Version     *models.VersionInfo   `json:"version" yaml:"version"`
	RecentIndex []models.VersionIndex `json:"recentIndex" yaml:"recentIndex"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a version record and the recent index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(infoProduct)
		if err != nil {
			return err
		}
		r := svc.Repository()

		var info *models.VersionInfo
		if cmd.Flags().Changed("code") {
			info, err = r.ReadVersion(infoCode)
		} else {
			info, err = r.Latest()
		}
		if err != nil {
			return err
		}

		recent, err := r.ReadRecentIndex()
		if err != nil && !errors.IsNotFound(err) {
			return err
		}

		view := infoView{Product: svc.Product(), Version: info, RecentIndex: recent}
		if view.RecentIndex == nil {
			view.RecentIndex = []models.VersionIndex{}
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(infoFormat) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return err
			}
			return enc.Close()
		case "text", "":
			writeInfoText(out, view)
			return nil
		default:
			return errors.NewInvalidInputError("UNKNOWN_FORMAT",
				i18n.T("cli.format.unknown", map[string]interface{}{"Format": infoFormat, "Formats": "text, json, yaml"}))
		}
	},
}

func writeInfoText(out io.Writer, view infoView) {
	fmt.Fprintf(out, "=== %s ===\n\n", i18n.T("cli.info.title", map[string]interface{}{"Product": view.Product}))

	if view.Version == nil {
		fmt.Fprintln(out, i18n.T("versions.none"))
	} else {
		v := view.Version
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%d\n", i18n.T("cli.info.code"), v.VersionCode)
		fmt.Fprintf(w, "%s\t%s\n", i18n.T("cli.info.name"), v.VersionName)
		fmt.Fprintf(w, "%s\t%t\n", i18n.T("cli.info.force"), v.ForceUpdate)
		w.Flush()

		if v.ChangeLog != "" {
			fmt.Fprintf(out, "\n%s\n%s\n", i18n.T("cli.info.changeLog"), v.ChangeLog)
		}
		if len(v.DownloadSource) > 0 {
			fmt.Fprintf(out, "\n%s\n", i18n.T("cli.info.sources"))
			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, src := range v.DownloadSource {
				link := ""
				if src.IsDirectLink {
					link = "direct"
				}
				fmt.Fprintf(w, "  %s\t%s\t%s\n", src.SourceName, src.URL, link)
			}
			w.Flush()
		}
	}

	fmt.Fprintf(out, "\n%s\n", i18n.T("cli.info.recent"))
	if len(view.RecentIndex) == 0 {
		fmt.Fprintln(out, "  "+i18n.T("cli.info.recentEmpty"))
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  VERSION\tFORCE UPDATE")
	for _, idx := range view.RecentIndex {
		fmt.Fprintf(w, "  %d\t%t\n", idx.Version, idx.ForceUpdate)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVarP(&infoProduct, "product", "p", "", "product to inspect")
	infoCmd.Flags().Int64VarP(&infoCode, "code", "c", 0, "version code (defaults to the latest)")
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "text", "output format (text, json, yaml)")
	_ = infoCmd.MarkFlagRequired("product")
}
