package federal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wichananm65/misdis-backend/internal/apperror"
)

// Service implements the operations of one level. parents is the repository
// of the level above and is nil for countries.
type Service struct {
	level   *Level
	repo    Repository
	parents Repository
}

func NewService(level *Level, repo, parents Repository) *Service {
	return &Service{level: level, repo: repo, parents: parents}
}

// NewServices builds one Service per level. repo must return the same
// repository for the same level.
func NewServices(repo func(*Level) Repository) []*Service {
	out := make([]*Service, 0, len(Levels))
	for _, l := range Levels {
		var parents Repository
		if l.Parent != nil {
			parents = repo(l.Parent)
		}
		out = append(out, NewService(l, repo(l), parents))
	}
	return out
}

func (s *Service) Level() *Level { return s.level }

func (s *Service) List(ctx context.Context) ([]Division, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Division, error) {
	if !validID(id) {
		return Division{}, s.notFound(id)
	}
	d, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Division{}, s.notFound(id)
	}
	return d, err
}

func (s *Service) Create(ctx context.Context, d Division) (Division, error) {
	if strings.TrimSpace(d.Title) == "" {
		return Division{}, apperror.Validation(map[string]string{"title": "This field is required"})
	}
	if err := s.checkParent(ctx, d.ParentID); err != nil {
		return Division{}, err
	}
	created, err := s.repo.Create(ctx, d)
	if errors.Is(err, ErrParentNotFound) {
		return Division{}, s.parentNotFound(d.ParentID)
	}
	return created, err
}

// Update serves PUT. Like PartialUpdate it only touches the supplied fields.
func (s *Service) Update(ctx context.Context, id int, p Patch) (Division, error) {
	return s.PartialUpdate(ctx, id, p)
}

// PartialUpdate applies every supplied field, zero values included.
func (s *Service) PartialUpdate(ctx context.Context, id int, p Patch) (Division, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Division{}, apperror.Validation(map[string]string{"title": "Must not be empty"})
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Division{}, err
	}
	if s.level.Parent == nil {
		p.ParentID = nil
	}
	if p.ParentID != nil && *p.ParentID != current.ParentID {
		if err := s.checkParent(ctx, *p.ParentID); err != nil {
			return Division{}, err
		}
	}

	next := p.Apply(current)
	updated, err := s.repo.Update(ctx, next)
	switch {
	case errors.Is(err, ErrNotFound):
		return Division{}, s.notFound(id)
	case errors.Is(err, ErrParentNotFound):
		return Division{}, s.parentNotFound(next.ParentID)
	}
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if !validID(id) {
		return s.notFound(id)
	}
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return s.notFound(id)
	case errors.Is(err, ErrHasDependents):
		dependents := "dependents"
		if c := s.level.Child(); c != nil {
			dependents = c.Plural
		}
		return apperror.Conflict("%s with the id %d has dependent %s and cannot be deleted", s.level.Name, id, dependents)
	}
	return err
}

func (s *Service) checkParent(ctx context.Context, parentID int) error {
	if s.level.Parent == nil {
		return nil
	}
	if !validID(parentID) {
		return s.parentNotFound(parentID)
	}
	ok, err := s.parents.Exists(ctx, parentID)
	if err != nil {
		return fmt.Errorf("check %s: %w", s.level.Parent.Table, err)
	}
	if !ok {
		return s.parentNotFound(parentID)
	}
	return nil
}

func (s *Service) notFound(id int) error {
	return apperror.NotFound("%s with the id %d is not found", s.level.Name, id)
}

func (s *Service) parentNotFound(id int) error {
	return apperror.NotFound("%s with the id %d is not found", s.level.Parent.Name, id)
}
