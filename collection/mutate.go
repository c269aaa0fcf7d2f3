package collection

import (
	"context"
	"errors"
	"fmt"
)

// ErrDeleteDeclined is returned when the user does not confirm a delete.
var ErrDeleteDeclined = errors.New("collection: delete declined")

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Notifier shows transient success and error messages.
type Notifier interface {
	Success(message string)
	Error(message string, err error)
}

// AlwaysConfirm answers yes without asking.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

type nopNotifier struct{}

func (nopNotifier) Success(string)      {}
func (nopNotifier) Error(string, error) {}

// Create sends a new entity to the backend and adds the backend's copy to
// the collection. When the identity is already present the entry is
// replaced.
func (s *Store[T]) Create(ctx context.Context, remote func(ctx context.Context) (T, error)) (T, error) {
	created, err := remote(ctx)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to create %s", s.lowerLabel()), err)
		return created, err
	}

	s.mu.Lock()
	if i := s.indexOf(s.key(created)); i >= 0 {
		s.items[i] = created
	} else {
		s.items = append(s.items, created)
	}
	s.version++
	s.mu.Unlock()

	s.notifier.Success(s.label + " created")
	return created, nil
}

// Update replaces the entity with the backend's updated copy. Entities not
// in the collection are left out.
func (s *Store[T]) Update(ctx context.Context, remote func(ctx context.Context) (T, error)) (T, error) {
	updated, err := remote(ctx)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to update %s", s.lowerLabel()), err)
		return updated, err
	}

	s.mu.Lock()
	if i := s.indexOf(s.key(updated)); i >= 0 {
		s.items[i] = updated
		s.version++
	}
	s.mu.Unlock()

	s.notifier.Success(s.label + " updated")
	return updated, nil
}

// Delete asks for confirmation, deletes id on the backend and then drops it
// from the collection. A declined prompt makes no remote call.
func (s *Store[T]) Delete(ctx context.Context, id, prompt string, remote func(ctx context.Context) error) error {
	ok, err := s.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeleteDeclined
	}

	if err := remote(ctx); err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to delete %s", s.lowerLabel()), err)
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		s.version++
	}
	s.mu.Unlock()

	s.notifier.Success(s.label + " deleted")
	return nil
}

func (s *Store[T]) lowerLabel() string {
	if s.label == "" {
		return "item"
	}
	b := []byte(s.label)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
