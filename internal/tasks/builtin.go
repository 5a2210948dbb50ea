package tasks

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Totarae/openelex/internal/jurisdiction"
	"github.com/Totarae/openelex/internal/model"
	"github.com/Totarae/openelex/internal/service"
	"github.com/Totarae/openelex/internal/util"
	"go.uber.org/zap"
)

// Builtin все задачи openelex
func Builtin() *Registry {
	return NewRegistry(
		Task{Name: "jurisdictions", Usage: "print Maryland jurisdiction slugs", Run: runJurisdictions},
		Task{Name: "urls", Usage: "print portal URLs for every jurisdiction", Run: runURLs},
		Task{Name: "discover", Usage: "list result files published for a year", Run: runDiscover},
		Task{Name: "fetch", Usage: "download and load precinct results", Run: runFetch},
		Task{Name: "migrate", Usage: "apply database migrations", Run: runMigrate},
		Task{Name: "serve", Usage: "serve the read-only HTTP API", Run: runServe},
	)
}

type electionFlags struct {
	year  int
	typ   string
	party string
	only  string
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func (f *electionFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.year, "year", 0, "election year")
	fs.StringVar(&f.typ, "type", string(model.General), "election type: general or primary")
	fs.StringVar(&f.party, "party", "", "party for primary elections")
	fs.StringVar(&f.only, "only", "", "comma-separated jurisdiction slugs")
}

func (f *electionFlags) election() (model.Election, error) {
	e := model.Election{Year: f.year, Type: model.ElectionType(f.typ), Party: f.party}
	return e, e.Validate()
}

func runJurisdictions(_ context.Context, env *Env, args []string) error {
	fs := newFlagSet("jurisdictions", env.Out)
	names := fs.Bool("names", false, "print human-readable names next to slugs")
	state := fs.String("state", "md", "state code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	slugs, err := jurisdiction.ForState(*state)
	if err != nil {
		return err
	}
	for _, slug := range slugs {
		if *names {
			name, _ := jurisdiction.Name(slug)
			fmt.Fprintf(env.Out, "%s\t%s\n", slug, name)
			continue
		}
		fmt.Fprintln(env.Out, slug)
	}
	return nil
}

func runURLs(_ context.Context, env *Env, args []string) error {
	fs := newFlagSet("urls", env.Out)
	var ef electionFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	slugs, err := SelectJurisdictions(ef.only)
	if err != nil {
		return err
	}

	if ef.year == 0 {
		for _, slug := range slugs {
			fmt.Fprintln(env.Out, util.JurisdictionURL(env.Config.PortalBaseURL, slug))
		}
		return nil
	}

	e, err := ef.election()
	if err != nil {
		return err
	}
	for _, slug := range slugs {
		fmt.Fprintln(env.Out, util.ResultsFileURL(env.Config.PortalBaseURL, e, slug))
	}
	return nil
}

func runDiscover(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("discover", env.Out)
	year := fs.Int("year", 0, "election year")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *year == 0 {
		return fmt.Errorf("discover: -year is required")
	}

	rt, err := env.Build(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	grouped, err := rt.Service.Discover(ctx, *year)
	if err != nil {
		return err
	}
	for _, slug := range jurisdiction.List() {
		for _, link := range grouped[slug] {
			fmt.Fprintf(env.Out, "%s\t%s\n", slug, link)
		}
	}
	env.Logger.Info("Discovered result files", zap.Int("jurisdictions", len(grouped)))
	return nil
}

func runFetch(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("fetch", env.Out)
	var ef electionFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := ef.election()
	if err != nil {
		return err
	}
	slugs, err := SelectJurisdictions(ef.only)
	if err != nil {
		return err
	}

	rt, err := env.Build(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	summaries := make([]service.Summary, len(slugs))
	ok := make([]bool, len(slugs))
	err = ForEachJurisdiction(ctx, slugs, env.Config.Workers, func(ctx context.Context, i int, slug string) error {
		s, err := rt.Service.IngestJurisdiction(ctx, e, slug)
		if err != nil {
			env.Logger.Warn("Jurisdiction failed", zap.String("jurisdiction", slug), zap.Error(err))
			return err
		}
		summaries[i] = s
		ok[i] = true
		return nil
	})

	for i, s := range summaries {
		if ok[i] {
			fmt.Fprintf(env.Out, "%s\t%d rows\t%d votes\n", s.Jurisdiction, s.Rows, s.Votes)
		} else {
			fmt.Fprintf(env.Out, "%s\tFAILED\n", slugs[i])
		}
	}
	return err
}

func runMigrate(_ context.Context, env *Env, args []string) error {
	if err := newFlagSet("migrate", env.Out).Parse(args); err != nil {
		return err
	}
	if env.Config.DatabaseDSN == "" {
		return fmt.Errorf("migrate: database DSN is not configured")
	}
	return env.Migrate(env.Config.DatabaseDSN, env.Logger)
}

func runServe(ctx context.Context, env *Env, args []string) error {
	if err := newFlagSet("serve", env.Out).Parse(args); err != nil {
		return err
	}

	rt, err := env.Build(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := &http.Server{
		Addr:              env.Config.ServerAddress,
		Handler:           rt.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		env.Logger.Info("Server started", zap.String("address", env.Config.ServerAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	env.Logger.Info("Server stopped")
	return nil
}
