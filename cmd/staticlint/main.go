// Command staticlint проверяет код openelex набором анализаторов.
//
// Состав:
//   - go/analysis/passes: shadow, structtag, nilness, fieldalignment, printf;
//   - staticcheck: все проверки SA (ошибки и подозрительные конструкции);
//   - simple S1000 (select с одним case) и unused U1000 (неиспользуемый код);
//   - bodyclose: незакрытые тела ответов, важно для fetcher;
//   - noexit: os.Exit и log.Fatal в main;
//   - slugcheck: "St. Mary's" и другие названия юрисдикций вместо слагов портала.
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/fieldalignment"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/unused"

	"github.com/Totarae/openelex/cmd/staticlint/noexit"
	"github.com/Totarae/openelex/cmd/staticlint/slugcheck"
)

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		fieldalignment.Analyzer,
		printf.Analyzer,
	}

	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			list = append(list, a.Analyzer)
		}
	}
	for _, a := range simple.Analyzers {
		if a.Analyzer.Name == "S1000" {
			list = append(list, a.Analyzer)
		}
	}

	return append(list,
		unused.Analyzer.Analyzer,
		bodyclose.Analyzer,
		noexit.NewAnalyzer(),
		slugcheck.Analyzer,
	)
}

func main() {
	multichecker.Main(analyzers()...)
}
