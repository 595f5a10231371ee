package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	verifyProduct string
	verifyFix     bool
	verifyQuiet   bool
	verifyReport  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that a product's derived files match its records",
	Long: `Check the version records of a product against the version index,
the recent index and the latest files. With --fix the derived files are
regenerated when that resolves the problems found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		start := time.Now()

		svc, err := openService(verifyProduct)
		if err != nil {
			return err
		}

		if !verifyQuiet {
			fmt.Fprintln(out, "🔍 "+i18n.T("cli.verify.start", map[string]interface{}{"Product": svc.Product()}))
		}

		report, err := svc.Verify()
		if err != nil {
			return err
		}
		showVerifyReport(out, report, time.Since(start))

		if verifyFix && report.Fixable() {
			if !verifyQuiet {
				fmt.Fprintln(out, "\n🔧 "+i18n.T("cli.verify.fixing"))
			}
			if err := svc.RefreshAll(); err != nil {
				return err
			}
			if report, err = svc.Verify(); err != nil {
				return err
			}
			appLogger.Info("Derived files regenerated",
				zap.String("product", svc.Product()),
				zap.Int("remaining_errors", report.Errors()))
			showVerifyReport(out, report, time.Since(start))
		}

		if verifyReport != "" {
			if err := writeVerifyReport(verifyReport, report); err != nil {
				return err
			}
			if !verifyQuiet {
				fmt.Fprintln(out, "📄 "+i18n.T("cli.verify.reportSaved", map[string]interface{}{"Path": verifyReport}))
			}
		}

		if !report.OK() {
			return errors.NewError(errors.ErrorTypeMalformedRecord, "VERIFY_FAILED",
				i18n.T("cli.verify.failed", map[string]interface{}{"Product": svc.Product(), "Count": report.Errors()}))
		}
		return nil
	},
}

func showVerifyReport(out io.Writer, report *repo.VerifyReport, elapsed time.Duration) {
	if verifyQuiet {
		return
	}

	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "⏱️  %s\n", i18n.T("cli.verify.elapsed", map[string]interface{}{"Elapsed": elapsed.Round(time.Millisecond).String()}))
	fmt.Fprintf(out, "📁 %s\n", i18n.T("cli.verify.versions", map[string]interface{}{"Count": report.Versions}))

	for i, issue := range report.Issues {
		mark := "❌"
		if issue.Severity == repo.SeverityWarning {
			mark = "⚠️ "
		}
		fixable := ""
		if issue.Fixable {
			fixable = " " + i18n.T("cli.verify.fixable")
		}
		fmt.Fprintf(out, "   %d. %s [%s] %s%s\n", i+1, mark, issue.Kind, issue.Message, fixable)
		if issue.Path != "" {
			fmt.Fprintf(out, "      %s\n", issue.Path)
		}
	}
	fmt.Fprintln(out, strings.Repeat("=", 50))

	switch {
	case len(report.Issues) == 0:
		fmt.Fprintln(out, "🎉 "+i18n.T("cli.verify.passed"))
	case report.OK():
		fmt.Fprintln(out, "✅ "+i18n.T("cli.verify.warningsOnly", map[string]interface{}{"Count": report.Warnings()}))
	default:
		if report.Fixable() && !verifyFix {
			fmt.Fprintln(out, "💡 "+i18n.T("cli.verify.hintFix"))
		}
	}
}

// writeVerifyReport saves report as YAML for .yaml/.yml paths, JSON otherwise
func writeVerifyReport(path string, report *repo.VerifyReport) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(report)
	default:
		data, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeFileSystem, "REPORT_ENCODE_FAILED", "failed to encode verification report")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileSystemError(err, "REPORT_WRITE_FAILED", "failed to write verification report").
			WithContext("path", path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&verifyProduct, "product", "p", "", "product to check")
	verifyCmd.Flags().BoolVar(&verifyFix, "fix", false, "regenerate derived files when that fixes the problems")
	verifyCmd.Flags().BoolVar(&verifyQuiet, "quiet", false, "only report through the exit code and --report")
	verifyCmd.Flags().StringVar(&verifyReport, "report", "", "write the report to this file (.json or .yaml)")
	_ = verifyCmd.MarkFlagRequired("product")
}
