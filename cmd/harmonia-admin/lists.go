package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harmonia-academy/harmonia-web/config"
	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/bootstrap"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/service"
	"github.com/harmonia-academy/harmonia-web/internal/table"
)

const (
	tokenEnv           = "HARMONIA_API_TOKEN"
	defaultMaxPages    = 50
	defaultListTimeout = 2 * time.Minute
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatPDF  outputFormat = "pdf"
)

// filterFlag collects repeated --filter key=value pairs.
type filterFlag struct {
	values url.Values
}

func (f *filterFlag) String() string {
	if f == nil || f.values == nil {
		return ""
	}
	return f.values.Encode()
}

func (f *filterFlag) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("filter %q: want key=value", raw)
	}
	if f.values == nil {
		f.values = url.Values{}
	}
	for v := range strings.SplitSeq(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.values.Add(listing.Kebab(key), v)
		}
	}
	return nil
}

type listOptions struct {
	Token    string
	Page     int
	PageSize int
	Sort     string
	Desc     bool
	Filters  filterFlag
	All      bool
	MaxPages int
	Format   outputFormat
	Out      string
	Timeout  time.Duration
}

func parseListFlags(name string, args []string) (listOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		opts   listOptions
		format string
	)
	fs.StringVar(&opts.Token, "token", "", "Bearer token for the school API (defaults to $"+tokenEnv+")")
	fs.IntVar(&opts.Page, "page", 1, "Page to fetch")
	fs.IntVar(&opts.PageSize, "page-size", 0, "Rows per page (0 uses the configured default)")
	fs.StringVar(&opts.Sort, "sort", "", "Column to sort by, e.g. startDate")
	fs.BoolVar(&opts.Desc, "desc", false, "Sort descending")
	fs.Var(&opts.Filters, "filter", "Filter as key=value; repeat or comma-separate for several values")
	fs.BoolVar(&opts.All, "all", false, "Walk every page starting at --page")
	fs.IntVar(&opts.MaxPages, "max-pages", defaultMaxPages, "Stop --all after this many pages")
	fs.StringVar(&format, "format", string(formatText), "Output format: text, json or pdf")
	fs.StringVar(&opts.Out, "out", "", "Write output to this file instead of stdout")
	fs.DurationVar(&opts.Timeout, "timeout", defaultListTimeout, "Overall deadline of the command")

	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}

	opts.Format = outputFormat(strings.ToLower(strings.TrimSpace(format)))
	switch opts.Format {
	case formatText, formatJSON, formatPDF:
	default:
		return listOptions{}, fmt.Errorf("unknown --format %q", format)
	}
	if opts.Format == formatPDF && opts.Out == "" {
		return listOptions{}, errors.New("--format pdf requires --out")
	}
	if opts.Page < 1 {
		return listOptions{}, errors.New("--page must be at least 1")
	}
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}
	return opts, nil
}

// query turns the flags into a normalized Query through the same parser the
// browser pages use.
func (o listOptions) query(d listing.Defaults) listing.Query {
	v := url.Values{}
	for key, vals := range o.Filters.values {
		v[key] = append([]string(nil), vals...)
	}
	v.Set(listing.ParamPage, strconv.Itoa(o.Page))
	if o.PageSize > 0 {
		v.Set(listing.ParamPageSize, strconv.Itoa(o.PageSize))
	}
	if o.Sort != "" {
		v.Set(listing.ParamSortColumn, o.Sort)
		dir := listing.Asc
		if o.Desc {
			dir = listing.Desc
		}
		v.Set(listing.ParamSortDirection, string(dir))
	}
	return listing.FromValues(v, d)
}

// resolveToken picks the bearer token: flag, then environment, then the dev
// identity's token when auth runs in mock mode.
func resolveToken(flagValue string, cfg config.AppConfig) (string, error) {
	if t := strings.TrimSpace(flagValue); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(os.Getenv(tokenEnv)); t != "" {
		return t, nil
	}
	if cfg.Auth.Mode == config.AuthModeMock && cfg.Auth.DevAuth.BearerToken != "" {
		return cfg.Auth.DevAuth.BearerToken, nil
	}
	return "", errors.New("no API token: pass --token or set " + tokenEnv)
}

// listDef describes one printable list.
type listDef[T any] struct {
	title    string
	defaults listing.Defaults
	columns  []table.Column[T]
	key      func(T) string
}

// collectPages walks pages through a Tracker so every page is an accepted
// response of the query the tracker issued.
func collectPages[T any](ctx context.Context, q listing.Query, opts listOptions, fetch listing.FetchFunc[T]) ([]T, listing.Page[T], error) {
	tracker := listing.NewTracker[T](q)
	page, err := tracker.Load(ctx, listing.Patch{}, fetch)
	if err != nil {
		return nil, page, err
	}

	rows := append([]T(nil), page.Data...)
	for fetched := 1; opts.All && page.HasNext() && fetched < opts.MaxPages; fetched++ {
		page, err = tracker.Load(ctx, listing.GoToPage(page.Metadata.CurrentPage+1), fetch)
		if err != nil {
			return nil, page, err
		}
		rows = append(rows, page.Data...)
	}
	return rows, page, nil
}

// scopedFetch is the List method of a school service.
type scopedFetch[T any] func(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[T], error)

func runList[T any](cmdCtx *commandContext, name string, args []string, def listDef[T], pick func(adminServices) scopedFetch[T]) error {
	opts, err := parseListFlags(name, args)
	if err != nil {
		return err
	}
	token, err := resolveToken(opts.Token, cmdCtx.Config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	svc, err := newServices(cmdCtx)
	if err != nil {
		return err
	}
	scope := apiclient.Scope{Token: token}
	list := pick(svc)
	scoped := func(ctx context.Context, q listing.Query) (listing.Page[T], error) {
		return list(ctx, scope, q)
	}

	q := opts.query(def.defaults)
	rows, last, err := collectPages[T](ctx, q, opts, scoped)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("list fetched", "command", name, "rows", len(rows), "total", last.Metadata.TotalCount)

	return withOutput(cmdCtx.Stdout, opts.Out, func(w io.Writer) error {
		return writeList(w, opts.Format, def, q, rows, last.Metadata, false)
	})
}

type adminServices struct {
	classes      *service.ClassService
	students     *service.StudentService
	transactions *service.TransactionService
}

func newServices(cmdCtx *commandContext) (adminServices, error) {
	cfg := cmdCtx.Config.API
	client, err := bootstrap.NewAPIClient(cfg, cmdCtx.Logger, nil)
	if err != nil {
		return adminServices{}, err
	}
	school := bootstrap.SchoolOptions(cfg, client, cmdCtx.Logger)

	classes, err := service.NewClassService(school)
	if err != nil {
		return adminServices{}, err
	}
	students, err := service.NewStudentService(service.StudentServiceOptions{SchoolServiceOptions: school})
	if err != nil {
		return adminServices{}, err
	}
	transactions, err := service.NewTransactionService(service.TransactionServiceOptions{
		SchoolServiceOptions: school,
		ExportLimit:          cfg.ExportLimit,
	})
	if err != nil {
		return adminServices{}, err
	}
	return adminServices{classes: classes, students: students, transactions: transactions}, nil
}

func runListClasses(cmdCtx *commandContext, args []string) error {
	return runList(cmdCtx, "list-classes", args, classList,
		func(s adminServices) scopedFetch[model.Class] { return s.classes.List })
}

func runListStudents(cmdCtx *commandContext, args []string) error {
	return runList(cmdCtx, "list-students", args, studentList,
		func(s adminServices) scopedFetch[model.Student] { return s.students.List })
}

func runListTransactions(cmdCtx *commandContext, args []string) error {
	return runList(cmdCtx, "list-transactions", args, transactionList,
		func(s adminServices) scopedFetch[model.Transaction] { return s.transactions.List })
}

// runExportTransactions mirrors the browser PDF export: one capped call for
// every matching row.
func runExportTransactions(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags("export-transactions", args)
	if err != nil {
		return err
	}
	if opts.Out == "" {
		return errors.New("--out is required")
	}
	token, err := resolveToken(opts.Token, cmdCtx.Config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	svc, err := newServices(cmdCtx)
	if err != nil {
		return err
	}
	q := opts.query(transactionList.defaults)
	rows, truncated, err := svc.transactions.Export(ctx, apiclient.Scope{Token: token}, q)
	if err != nil {
		return err
	}
	if truncated {
		cmdCtx.Logger.Warn("export truncated", "rows", len(rows))
	}

	if err := withOutput(cmdCtx.Stdout, opts.Out, func(w io.Writer) error {
		return writeList(w, formatPDF, transactionList, q, rows, listing.Metadata{TotalCount: len(rows)}, truncated)
	}); err != nil {
		return err
	}
	return writef(cmdCtx.Stdout, "wrote %d transactions to %s\n", len(rows), opts.Out)
}
