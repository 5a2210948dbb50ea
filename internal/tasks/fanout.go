package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Totarae/openelex/internal/jurisdiction"
	"golang.org/x/sync/errgroup"
)

// ForEachJurisdiction вызывает fn для каждого слага, не более workers одновременно.
// Ошибка одной юрисдикции не останавливает остальные, все ошибки объединяются
// в порядке слагов.
func ForEachJurisdiction(ctx context.Context, slugs []string, workers int, fn func(ctx context.Context, i int, slug string) error) error {
	if workers <= 0 {
		workers = 1
	}
	errs := make([]error, len(slugs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, slug := range slugs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", slug, err)
				return nil
			}
			errs[i] = fn(ctx, i, slug)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// SelectJurisdictions разбирает список слагов через запятую.
// Пустой список означает все юрисдикции в каноническом порядке.
func SelectJurisdictions(only string) ([]string, error) {
	if strings.TrimSpace(only) == "" {
		return jurisdiction.List(), nil
	}

	var slugs []string
	seen := make(map[string]struct{})
	for _, s := range strings.Split(only, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !jurisdiction.Contains(s) {
			return nil, fmt.Errorf("unknown jurisdiction %q", s)
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		slugs = append(slugs, s)
	}
	if len(slugs) == 0 {
		return nil, fmt.Errorf("no jurisdictions selected")
	}
	// канонический порядок для воспроизводимого вывода
	ordered := make([]string, 0, len(slugs))
	for _, s := range jurisdiction.List() {
		if _, ok := seen[s]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}
