package memstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/models"
)

func (s *Store) CreateAdmin(_ context.Context, a *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.admins {
		if existing.Email == a.Email {
			return models.DuplicateError("an account with email %s already exists", a.Email)
		}
	}
	ensureID(&a.ID)
	s.admins[a.ID] = *a
	return nil
}

func (s *Store) GetAdmin(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[id]
	if !ok {
		return nil, models.NotFoundError("account not found")
	}
	return &a, nil
}

func (s *Store) FindAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, models.NotFoundError("account not found")
}

func (s *Store) UpsertAdminByEmail(_ context.Context, a *models.Admin) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.admins {
		if existing.Email != a.Email {
			continue
		}
		existing.Name = a.Name
		existing.Password = a.Password
		existing.Role = a.Role
		existing.UpdatedAt = a.UpdatedAt
		s.admins[id] = existing
		return &existing, nil
	}

	created := *a
	ensureID(&created.ID)
	s.admins[created.ID] = created
	return &created, nil
}
