//go:build integration

package subject_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vigil/internal/screening"
	"vigil/internal/subject"
	id "vigil/pkg/domain"
	"vigil/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *containers.PostgresContainer
	store     *subject.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.container = containers.NewPostgresContainer(s.T())
	s.store = subject.NewPostgres(s.container.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.container.TruncateTables(context.Background(), "subjects"))
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), id.NewSubjectID())
	s.Require().ErrorIs(err, subject.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpsertAndGet() {
	ctx := context.Background()
	subjectID := id.NewSubjectID()

	err := s.store.Upsert(ctx, &screening.Subject{
		ID: subjectID,
		Identity: screening.Identity{
			Kind:      screening.KindPerson,
			FullName:  "Juan Pérez",
			NameParts: []string{"Juan", "Pérez"},
			LegalID:   "PEGJ800101AB1",
		},
		Active: true,
	})
	s.Require().NoError(err)

	got, err := s.store.Get(ctx, subjectID)
	s.Require().NoError(err)
	s.Equal(subjectID, got.ID)
	s.Equal(screening.KindPerson, got.Identity.Kind)
	s.Equal("Juan Pérez", got.Identity.FullName)
	s.Equal([]string{"Juan", "Pérez"}, got.Identity.NameParts)
	s.Equal("PEGJ800101AB1", got.Identity.LegalID)
	s.True(got.Active)
	s.False(got.CreatedAt.IsZero())
}

func (s *PostgresStoreSuite) TestUpsertUpdatesExisting() {
	ctx := context.Background()
	subjectID := id.NewSubjectID()
	sub := &screening.Subject{
		ID:       subjectID,
		Identity: screening.Identity{Kind: screening.KindEntity, FullName: "Acme SA de CV"},
		Active:   true,
	}
	s.Require().NoError(s.store.Upsert(ctx, sub))

	sub.Active = false
	s.Require().NoError(s.store.Upsert(ctx, sub))

	got, err := s.store.Get(ctx, subjectID)
	s.Require().NoError(err)
	s.False(got.Active)
}

func (s *PostgresStoreSuite) TestListActive() {
	ctx := context.Background()
	for i, active := range []bool{true, false, true} {
		err := s.store.Upsert(ctx, &screening.Subject{
			ID: id.NewSubjectID(),
			Identity: screening.Identity{
				Kind:     screening.KindPerson,
				FullName: "Subject " + string(rune('A'+i)),
			},
			Active: active,
		})
		s.Require().NoError(err)
	}

	subjects, err := s.store.ListActive(ctx)
	s.Require().NoError(err)
	s.Len(subjects, 2)
	for _, sub := range subjects {
		s.True(sub.Active)
	}
}
