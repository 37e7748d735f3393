package tasks

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	tasks  map[int]*Task
	lastID int
	now    func() time.Time
}

func newRepoMock() *repoMock {
	return &repoMock{
		tasks: make(map[int]*Task),
		now:   time.Now,
	}
}

func (r *repoMock) Add(_ context.Context, task Task) (*Task, error) {
	r.lastID++
	task.ID = r.lastID
	task.CreatedAt = r.now()
	r.tasks[task.ID] = &task
	added := task
	return &added, nil
}

func (r *repoMock) Update(_ context.Context, task Task) (*Task, error) {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return nil, ErrTaskNotFound
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.DueDate = task.DueDate
	existing.Priority = task.Priority
	updated := *existing
	return &updated, nil
}

func (r *repoMock) Toggle(_ context.Context, id, userID int) (*Task, error) {
	existing, ok := r.tasks[id]
	if !ok || existing.UserID != userID {
		return nil, ErrTaskNotFound
	}
	existing.Completed = !existing.Completed
	if existing.Completed {
		now := r.now()
		existing.CompletedAt = &now
	} else {
		existing.CompletedAt = nil
	}
	toggled := *existing
	return &toggled, nil
}

func (r *repoMock) Delete(_ context.Context, id, userID int) error {
	existing, ok := r.tasks[id]
	if !ok || existing.UserID != userID {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *repoMock) List(_ context.Context, userID int, completed *bool) ([]Task, error) {
	tasks := make([]Task, 0)
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if completed != nil && t.Completed != *completed {
			continue
		}
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if (a.DueDate == nil) != (b.DueDate == nil) {
			return a.DueDate != nil
		}
		if a.DueDate != nil && *a.DueDate != *b.DueDate {
			return *a.DueDate < *b.DueDate
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return tasks, nil
}
