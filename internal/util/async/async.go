package async

import (
	"context"
	"errors"
	"fmt"
)

// Task is a named operation.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel starts every task, waits for all of them and returns the
// errors joined in task order. Tasks share ctx; when one fails the others
// are cancelled.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, len(tasks))
	done := make(chan struct{}, len(tasks))

	for i, task := range tasks {
		go func() {
			defer func() { done <- struct{}{} }()
			if err := task.Func(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
				cancel()
			}
		}()
	}

	for range tasks {
		<-done
	}

	return errors.Join(errs...)
}
