package menu

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/huanfeng/updategen/pkg/repo"
	"github.com/huanfeng/updategen/pkg/service"
	"go.uber.org/zap"
)

// errCancelled ends a session the person backed out of
var errCancelled = stderrors.New("session cancelled")

// Options locate the products and templates a session works on
type Options struct {
	SourceRoot        string
	TemplatesDir      string
	RecentIndexLength int
	Logger            *zap.Logger
	ShowBanner        bool
}

// Session is one interactive run: pick a product, then loop over its
// functions until the person exits or input ends.
type Session struct {
	menu     *Menu
	out      io.Writer
	opts     Options
	svc      *service.Service
	inputErr error
}

// NewSession creates a session
func NewSession(m *Menu, out io.Writer, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{menu: m, out: out, opts: opts}
}

// Run drives the session. End of input ends it without an error.
func (s *Session) Run() error {
	if s.opts.ShowBanner {
		WriteBanner(s.out, s.menu.styles)
	}

	product, err := s.resolveProduct()
	if err != nil {
		return s.finish(err)
	}

	svc, err := service.Open(s.opts.SourceRoot, product, repo.Options{
		RecentIndexLength: s.opts.RecentIndexLength,
		Logger:            s.opts.Logger,
	})
	if err != nil {
		return err
	}
	s.svc = svc
	s.opts.Logger.Debug("Session opened product", zap.String("product", product))

	return s.finish(s.productLoop())
}

func (s *Session) finish(err error) error {
	switch {
	case stderrors.Is(err, io.EOF):
		fmt.Fprintln(s.out)
		return nil
	case stderrors.Is(err, errCancelled):
		return nil
	}
	return err
}

// resolveProduct picks an existing product or creates a new one. An empty
// name for the new product cancels the session.
func (s *Session) resolveProduct() (string, error) {
	products, err := repo.ListProducts(s.opts.SourceRoot)
	if err != nil {
		return "", err
	}

	if len(products) > 0 {
		idx, err := s.menu.Choose(i18n.T("menu.product.title"), products, i18n.T("menu.product.new"))
		if err != nil {
			return "", err
		}
		if idx >= 0 {
			return products[idx], nil
		}
	}

	validate := s.nameValidator(s.opts.SourceRoot, "")
	for {
		name, ok, err := s.menu.NewName(i18n.T("menu.product.newPrompt"), func(name string) error {
			if name == "" {
				return nil
			}
			return validate(name)
		})
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		if name == "" {
			s.menu.Info(i18n.T("operation.cancelled"))
			return "", errCancelled
		}
		if err := repo.CreateProduct(s.opts.SourceRoot, name); err != nil {
			s.menu.Problem(err)
			continue
		}
		s.menu.Success(i18n.T("product.created", map[string]interface{}{"Name": name}))
		return name, nil
	}
}

// nameValidator rejects invalid names and names already present in dir
func (s *Session) nameValidator(dir, suffix string) func(string) error {
	return func(name string) error {
		if err := repo.ValidateName(name); err != nil {
			return err
		}
		file := name
		if suffix != "" && !strings.HasSuffix(file, suffix) {
			file += suffix
		}
		if _, err := os.Stat(filepath.Join(dir, file)); err == nil {
			return errors.NewAlreadyExistsError("NAME_EXISTS",
				i18n.T("name.exists", map[string]interface{}{"Name": file, "Path": dir}))
		}
		return nil
	}
}

func (s *Session) productLoop() error {
	sections := []string{
		i18n.T("menu.action.list"),
		i18n.T("menu.action.add"),
		i18n.T("menu.action.replace"),
		i18n.T("menu.action.delete"),
		i18n.T("menu.action.refresh"),
	}
	actions := []func() error{
		s.listVersions,
		func() error { return s.addVersion(false) },
		func() error { return s.addVersion(true) },
		s.deleteVersion,
		s.refreshAll,
	}

	for {
		title := i18n.T("menu.product.current", map[string]interface{}{"Product": s.svc.Product()})
		idx, err := s.menu.Choose(title, sections, i18n.T("menu.exit"))
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}

		if err := actions[idx](); err != nil {
			if s.inputErr != nil || stderrors.Is(err, io.EOF) {
				return err
			}
			s.opts.Logger.Debug("Action failed", zap.Error(err))
			s.menu.Problem(err)
		}
	}
}

func (s *Session) listVersions() error {
	codes, err := s.svc.GetVersions()
	if err != nil {
		return err
	}
	s.menu.ShowVersions(codes)
	return nil
}

func (s *Session) addVersion(replaceable bool) error {
	info, err := s.chooseTemplate()
	if err != nil || info == nil {
		return err
	}

	res, err := s.svc.AddVersion(info, replaceable, s.confirmOldVersion, s.confirmReplace)
	if s.inputErr != nil {
		return s.inputErr
	}
	if err != nil {
		return err
	}

	data := map[string]interface{}{"Name": info.VersionName, "Code": info.VersionCode}
	switch res.Outcome {
	case service.Added:
		s.menu.Success(i18n.T("version.added", data))
	case service.Replaced:
		s.menu.Success(i18n.T("version.replaced", data))
	default:
		s.menu.Info(i18n.T("operation.cancelled"))
	}
	return nil
}

// chooseTemplate returns the record picked from the templates directory,
// or nil after scaffolding a new template file.
func (s *Session) chooseTemplate() (*models.VersionInfo, error) {
	dir := s.opts.TemplatesDir
	templates, err := repo.ListTemplates(dir)
	if err != nil {
		return nil, err
	}

	if len(templates) > 0 {
		idx, err := s.menu.Choose(i18n.T("menu.template.title"), templates, i18n.T("menu.template.new"))
		if err != nil {
			return nil, err
		}
		if idx >= 0 {
			return repo.ReadVersionInfoFile(filepath.Join(dir, templates[idx]))
		}
	}

	name, ok, err := s.menu.NewName(i18n.T("menu.template.newPrompt"), s.nameValidator(dir, ".json"))
	if err != nil || !ok {
		return nil, err
	}
	path, err := repo.NewVersionTemplate(dir, name)
	if err != nil {
		return nil, err
	}
	s.menu.Success(i18n.T("template.created", map[string]interface{}{"Path": path}))
	return nil, nil
}

func (s *Session) deleteVersion() error {
	code, ok, err := s.menu.VersionCode(i18n.T("menu.delete.prompt"), func(code int64) error {
		has, err := s.svc.Repository().HasVersionCode(code)
		if err != nil {
			return err
		}
		if !has {
			return errors.NewNotFoundError("VERSION_NOT_FOUND",
				i18n.T("version.unknown", map[string]interface{}{"Code": code}))
		}
		return nil
	})
	if err != nil || !ok {
		return err
	}

	res, err := s.svc.DeleteVersion(code, s.confirmDelete)
	if s.inputErr != nil {
		return s.inputErr
	}
	if err != nil {
		return err
	}
	if res.Declined() {
		s.menu.Info(i18n.T("operation.cancelled"))
		return nil
	}
	s.menu.Success(i18n.T("version.deleted", map[string]interface{}{
		"Name": res.Info.VersionName,
		"Code": res.Info.VersionCode,
	}))
	return nil
}

func (s *Session) refreshAll() error {
	if err := s.svc.RefreshAll(); err != nil {
		return err
	}
	s.menu.Success(i18n.T("refresh.index"))
	s.menu.Success(i18n.T("refresh.latest"))
	return nil
}

func (s *Session) confirm(message string) bool {
	ok, err := s.menu.YesOrNo(message)
	if err != nil {
		s.inputErr = err
		return false
	}
	return ok
}

func (s *Session) confirmOldVersion(ctx service.DecisionContext) bool {
	return s.confirm(i18n.T("confirm.oldVersion", map[string]interface{}{
		"Name": ctx.Incoming.VersionName,
		"Code": ctx.Incoming.VersionCode,
	}))
}

func (s *Session) confirmReplace(ctx service.DecisionContext) bool {
	return s.confirm(i18n.T("confirm.replace", map[string]interface{}{
		"OldName": ctx.Existing.VersionName,
		"OldCode": ctx.Existing.VersionCode,
		"NewName": ctx.Incoming.VersionName,
		"NewCode": ctx.Incoming.VersionCode,
	}))
}

func (s *Session) confirmDelete(ctx service.DecisionContext) bool {
	return s.confirm(i18n.T("confirm.delete", map[string]interface{}{
		"Name": ctx.Existing.VersionName,
		"Code": ctx.Existing.VersionCode,
	}))
}
