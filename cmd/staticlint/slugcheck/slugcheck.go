// Package slugcheck находит строковые литералы с названием юрисдикции
// Мэриленда в человеческом написании ("St. Mary's", "Baltimore City")
// и предлагает заменить их слагом из реестра.
package slugcheck

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/Totarae/openelex/internal/jurisdiction"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "slugcheck",
	Doc:      "предлагает слаг реестра вместо названия юрисдикции в строковом литерале",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var names = jurisdiction.Names()

func run(pass *analysis.Pass) (interface{}, error) {
	// сам реестр хранит названия
	if pass.Pkg.Name() == "jurisdiction" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.BasicLit)(nil)}, func(n ast.Node) {
		lit := n.(*ast.BasicLit)
		if lit.Kind != token.STRING {
			return
		}
		if strings.HasSuffix(pass.Fset.File(lit.Pos()).Name(), "_test.go") {
			return
		}
		val, err := strconv.Unquote(lit.Value)
		if err != nil {
			return
		}
		slug, ok := names[val]
		if !ok {
			return
		}
		quoted := strconv.Quote(slug)
		pass.Report(analysis.Diagnostic{
			Pos:     lit.Pos(),
			End:     lit.End(),
			Message: "jurisdiction name " + lit.Value + " is not a portal slug, use " + quoted,
			SuggestedFixes: []analysis.SuggestedFix{{
				Message:   "replace with " + quoted,
				TextEdits: []analysis.TextEdit{{Pos: lit.Pos(), End: lit.End(), NewText: []byte(quoted)}},
			}},
		})
	})
	return nil, nil
}
