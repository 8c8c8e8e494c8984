// Package deps answers blocking questions over a set of tasks. Edges come
// from each task's BlockedBy list; the resolver never mutates tasks and
// holds no state between calls.
package deps

import (
	"errors"
	"fmt"

	"github.com/amiller68/wt/internal/store"
)

// ErrDependencyCycle indicates the blocked-by edges form a cycle.
var ErrDependencyCycle = errors.New("dependency cycle detected")

// IsBlocked reports whether task must wait: it has at least one BlockedBy
// entry that names a present, not-yet-completed task. References to tasks
// absent from the set are treated as satisfied, so killing a dependency
// never deadlocks its dependents.
func IsBlocked(task store.Task, tasks []store.Task) bool {
	if len(task.BlockedBy) == 0 {
		return false
	}
	byName := index(tasks)
	for _, dep := range task.BlockedBy {
		if t, ok := byName[dep]; ok && t.Status != store.StatusCompleted {
			return true
		}
	}
	return false
}

// UnblockedAfter returns the blocked tasks whose every dependency is
// satisfied once completedName finishes. Results keep the slice order of
// tasks, so activation order is deterministic.
func UnblockedAfter(completedName string, tasks []store.Task) []store.Task {
	byName := index(tasks)
	if t, ok := byName[completedName]; ok {
		done := *t
		done.Status = store.StatusCompleted
		byName[completedName] = &done
	}

	var unblocked []store.Task
	for _, task := range tasks {
		if task.Status != store.StatusBlocked || task.Name == completedName {
			continue
		}
		satisfied := true
		for _, dep := range task.BlockedBy {
			if t, ok := byName[dep]; ok && t.Status != store.StatusCompleted {
				satisfied = false
				break
			}
		}
		if satisfied {
			unblocked = append(unblocked, task)
		}
	}
	return unblocked
}

// Validate rejects self-references and cycles among the given tasks.
// References to names outside the set are allowed; they fall under the
// dangling-dependency policy and resolve as satisfied.
func Validate(tasks []store.Task) error {
	edges := make(map[string][]string, len(tasks))
	byName := index(tasks)
	for _, task := range tasks {
		for _, dep := range task.BlockedBy {
			if dep == task.Name {
				return fmt.Errorf("%w: %q blocks itself", ErrDependencyCycle, task.Name)
			}
			if _, ok := byName[dep]; ok {
				edges[task.Name] = append(edges[task.Name], dep)
			}
		}
	}

	// DFS coloring: 0 unvisited, 1 on the current path, 2 done.
	colors := make(map[string]int, len(tasks))
	var visit func(name string) bool
	visit = func(name string) bool {
		colors[name] = 1
		for _, dep := range edges[name] {
			switch colors[dep] {
			case 1:
				return true
			case 0:
				if visit(dep) {
					return true
				}
			}
		}
		colors[name] = 2
		return false
	}
	for _, task := range tasks {
		if colors[task.Name] == 0 && visit(task.Name) {
			return fmt.Errorf("%w: involving %q", ErrDependencyCycle, task.Name)
		}
	}
	return nil
}

func index(tasks []store.Task) map[string]*store.Task {
	byName := make(map[string]*store.Task, len(tasks))
	for i := range tasks {
		byName[tasks[i].Name] = &tasks[i]
	}
	return byName
}
