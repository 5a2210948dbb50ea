// Package tasks содержит именованные задачи командной строки openelex
// и диспетчер, который их запускает.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/Totarae/openelex/internal/config"
	"github.com/Totarae/openelex/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownTask задача с таким именем не зарегистрирована
var ErrUnknownTask = errors.New("unknown task")

// Runtime зависимости, которые собираются только для задач, которым они нужны.
type Runtime struct {
	Service *service.IngestService
	Handler http.Handler
	Close   func()
}

// BuildFunc собирает Runtime из конфигурации
type BuildFunc func(ctx context.Context) (*Runtime, error)

// Env окружение запуска задачи
type Env struct {
	Config  *config.Config
	Logger  *zap.Logger
	Out     io.Writer
	Build   BuildFunc
	Migrate func(dsn string, logger *zap.Logger) error
}

// Task выполняет задачу с аргументами после её имени
type Task struct {
	Name  string
	Usage string
	Run   func(ctx context.Context, env *Env, args []string) error
}

// Registry набор задач по именам
type Registry struct {
	tasks map[string]Task
}

func NewRegistry(tasks ...Task) *Registry {
	r := &Registry{tasks: make(map[string]Task)}
	for _, t := range tasks {
		r.tasks[t.Name] = t
	}
	return r
}

// Names имена задач по алфавиту
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usage краткая справка по задачам
func (r *Registry) Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: openelex [global flags] <task> [task flags]")
	fmt.Fprintln(w, "tasks:")
	for _, name := range r.Names() {
		fmt.Fprintf(w, "  %-14s %s\n", name, r.tasks[name].Usage)
	}
}

// Run запускает задачу. Каждый запуск получает свой run_id в логгере.
func (r *Registry) Run(ctx context.Context, env *Env, name string, args []string) error {
	task, ok := r.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}

	runEnv := *env
	runEnv.Logger = env.Logger.With(zap.String("task", name), zap.String("run_id", uuid.NewString()))
	runEnv.Logger.Debug("Task started", zap.Strings("args", args))

	if err := task.Run(ctx, &runEnv, args); err != nil {
		runEnv.Logger.Error("Task failed", zap.Error(err))
		return err
	}
	runEnv.Logger.Debug("Task finished")
	return nil
}
