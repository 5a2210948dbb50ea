// Package noexit содержит анализатор, который запрещает завершать процесс
// прямо из функции main пакета main: os.Exit и log.Fatal* пропускают
// отложенные вызовы, в том числе logger.Sync и закрытие пула БД.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer запрещает os.Exit и log.Fatal* в функции main.
var Analyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "запрещает os.Exit и log.Fatal в функции main пакета main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// NewAnalyzer возвращает анализатор noexit.
func NewAnalyzer() *analysis.Analyzer {
	return Analyzer
}

var forbidden = map[string]bool{
	"os.Exit":     true,
	"log.Fatal":   true,
	"log.Fatalf":  true,
	"log.Fatalln": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			// замыкания в main выполняются не обязательно из main
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			obj, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
			if ok && forbidden[obj.FullName()] {
				pass.Reportf(call.Pos(), "вызов %s в функции main запрещён", obj.FullName())
			}
			return true
		})
	})
	return nil, nil
}
