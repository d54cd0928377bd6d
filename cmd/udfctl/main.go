package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/semihalev/go-udf"
	_ "github.com/semihalev/go-udf/ext" // example functions registered here
	"github.com/semihalev/go-udf/host"
	"github.com/semihalev/go-udf/internal/installer"
	"github.com/semihalev/go-udf/internal/manifest"
)

type options struct {
	Manifest string `short:"m" long:"manifest" env:"GOUDF_MANIFEST" default:"udf.yml" description:"manifest file, yaml or toml"`
	Soname   string `long:"soname" env:"GOUDF_SONAME" description:"library file name, overrides the manifest"`
	Dbg      bool   `long:"dbg" env:"GOUDF_DEBUG" description:"debug mode"`

	RunCmd struct {
		Lib        string `short:"l" long:"lib" env:"GOUDF_LIB" description:"path to a compiled plugin, in-process functions are used if empty"`
		Find       bool   `long:"find" description:"search for the manifest soname in plugin directories"`
		Concurrent int    `short:"c" long:"concurrent" default:"1" description:"number of cases to run at once"`

		PositionalArgs struct {
			Functions []string `positional-arg-name:"function" description:"functions to run, all if empty"`
		} `positional-args:"yes"`
	} `command:"run" description:"evaluate manifest cases"`

	SQLCmd struct {
		Drop bool `long:"drop" description:"print DROP statements instead"`
	} `command:"sql" description:"print the DDL for the manifest functions"`

	InstallCmd struct {
		DSN     string `long:"dsn" env:"GOUDF_DSN" required:"true" description:"mysql dsn, e.g. root:secret@tcp(localhost:3306)/"`
		Replace bool   `long:"replace" description:"drop existing functions first"`
	} `command:"install" description:"create the functions on a mysql server"`

	UninstallCmd struct {
		DSN string `long:"dsn" env:"GOUDF_DSN" required:"true" description:"mysql dsn"`
	} `command:"uninstall" description:"drop the functions from a mysql server"`
}

var revision = "latest"

var exitFunc = os.Exit

// errCasesFailed is returned by run when at least one case did not match.
var errCasesFailed = errors.New("some cases failed")

func main() {
	fmt.Printf("udfctl %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		exitFunc(1) // can be redefined in tests
	}
	setupLog(opts.Dbg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, p, opts, os.Stdout); err != nil {
		log.Printf("[WARN] %v", err)
		exitFunc(1)
	}
}

func run(ctx context.Context, p *flags.Parser, opts options, out io.Writer) error {
	m, err := manifest.Load(opts.Manifest)
	if err != nil {
		return err
	}
	if opts.Soname != "" {
		m.Soname = opts.Soname
	}

	switch {
	case isActive(p, "run"):
		return runCases(ctx, m, opts, out)
	case isActive(p, "sql"):
		return printSQL(m, opts.SQLCmd.Drop, out)
	case isActive(p, "install"):
		db, err := installer.Open(ctx, opts.InstallCmd.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		inst := &installer.Installer{DB: db, Soname: m.Soname, Replace: opts.InstallCmd.Replace}
		return inst.Install(ctx, m.Functions)
	case isActive(p, "uninstall"):
		db, err := installer.Open(ctx, opts.UninstallCmd.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		inst := &installer.Installer{DB: db, Soname: m.Soname}
		return inst.Uninstall(ctx, m.Functions)
	}
	return fmt.Errorf("no command given")
}

func isActive(p *flags.Parser, name string) bool {
	return p.Active != nil && p.Command.Find(name) == p.Active
}

func printSQL(m *manifest.Manifest, drop bool, out io.Writer) error {
	for _, fn := range m.Functions {
		stmt := installer.DropStatement(fn)
		if !drop {
			var err error
			if stmt, err = installer.CreateStatement(fn, m.Soname); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%s;\n", stmt)
	}
	return nil
}

// target is a manifest function bound to something that can evaluate it.
type target struct {
	fn      manifest.Function
	binding udf.Binding
}

// caseCheck keeps the expectations of a case next to its target.
type caseCheck struct {
	target
	c manifest.Case
}

func runCases(ctx context.Context, m *manifest.Manifest, opts options, out io.Writer) error {
	libPath := opts.RunCmd.Lib
	if libPath == "" && opts.RunCmd.Find {
		if libPath = host.FindLibrary(m.Soname); libPath == "" {
			return udf.NewError(udf.ErrLoad, fmt.Sprintf("can't find %s", m.Soname))
		}
	}

	var lib *host.Library
	if libPath != "" {
		var err error
		if lib, err = host.Open(libPath); err != nil {
			return err
		}
		defer lib.Close()
	}

	targets, err := bind(m, opts.RunCmd.PositionalArgs.Functions, lib)
	if err != nil {
		return err
	}

	var cases []host.Case
	var checks []caseCheck
	for _, tg := range targets {
		for _, c := range tg.fn.Cases {
			rows, err := c.Values()
			if err != nil {
				return fmt.Errorf("%s case %q: %w", tg.fn.Name, c.Name, err)
			}
			cases = append(cases, host.Case{Name: c.Name, Function: tg.binding, Rows: rows})
			checks = append(checks, caseCheck{target: tg, c: c})
		}
	}
	log.Printf("[DEBUG] running %d cases, concurrency %d", len(cases), opts.RunCmd.Concurrent)

	results, runErr := host.RunCases(ctx, cases, opts.RunCmd.Concurrent)
	if runErr != nil {
		return runErr
	}

	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	failed := 0
	for i, res := range results {
		tg, c := checks[i].target, checks[i].c
		if err := c.Verify(tg.binding.ReturnType(), res); err != nil {
			failed++
			fmt.Fprintf(out, "%s %s/%s: %v\n", fail("FAIL"), tg.fn.Name, c.Name, err)
			continue
		}
		fmt.Fprintf(out, "%s %s/%s %s\n", pass("PASS"), tg.fn.Name, c.Name, describe(res))
	}
	fmt.Fprintf(out, "%d cases, %d failed\n", len(results), failed)
	if failed > 0 {
		return errCasesFailed
	}
	return nil
}

// bind resolves the selected manifest functions either in lib or, when lib
// is nil, in the in-process registry.
func bind(m *manifest.Manifest, names []string, lib *host.Library) ([]target, error) {
	fns := m.Functions
	if len(names) > 0 {
		fns = make([]manifest.Function, 0, len(names))
		for _, name := range names {
			fn, err := m.Function(name)
			if err != nil {
				return nil, err
			}
			fns = append(fns, fn)
		}
	}

	res := make([]target, 0, len(fns))
	for _, fn := range fns {
		rt, err := fn.ReturnType()
		if err != nil {
			return nil, err
		}
		if lib != nil {
			b, err := lib.Function(fn.Name, rt)
			if err != nil {
				return nil, err
			}
			res = append(res, target{fn: fn, binding: b})
			continue
		}
		b, ok := udf.Lookup(fn.Name)
		if !ok {
			return nil, udf.NewError(udf.ErrSymbol, fmt.Sprintf("function %s is not registered", fn.Name))
		}
		if b.ReturnType() != rt {
			return nil, fmt.Errorf("function %s returns %s, manifest says %s", fn.Name, b.ReturnType(), rt)
		}
		res = append(res, target{fn: fn, binding: b})
	}
	return res, nil
}

func describe(res host.CaseResult) string {
	if res.InitError != "" {
		return fmt.Sprintf("(init error: %s)", res.InitError)
	}
	vals := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		switch {
		case r.Error:
			vals[i] = "ERROR"
		case r.Null:
			vals[i] = "NULL"
		case res.Case.Function.ReturnType() == udf.ReturnReal:
			vals[i] = fmt.Sprintf("%g", r.Real)
		default:
			vals[i] = fmt.Sprintf("%d", r.Int)
		}
	}
	return "[" + strings.Join(vals, ", ") + "]"
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
	udf.SetLogger(lgr.New(logOpts...))
}
