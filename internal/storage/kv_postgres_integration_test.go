//go:build integration

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"airspace/internal/storage"
	"airspace/pkg/testutil/containers"
)

// PostgresKVSuite exercises the KV contract against a real Postgres instance.
type PostgresKVSuite struct {
	suite.Suite
	kv  *storage.PostgresKV
	c   *containers.PostgresContainer
	ctx context.Context
}

func (s *PostgresKVSuite) SetupSuite() {
	s.ctx = context.Background()
	s.c = containers.GetManager().GetPostgres(s.T())
	s.kv = storage.NewPostgresKV(s.c.DB)
	s.Require().NoError(s.kv.EnsureSchema(s.ctx))
}

func (s *PostgresKVSuite) SetupTest() {
	s.Require().NoError(s.c.TruncateKV(s.ctx))
}

func TestPostgresKVSuite(t *testing.T) {
	suite.Run(t, new(PostgresKVSuite))
}

func (s *PostgresKVSuite) TestRoundTrip() {
	s.Require().NoError(s.kv.Set(s.ctx, "k", "v1"))
	s.Require().NoError(s.kv.Set(s.ctx, "k", "v2"))

	v, err := s.kv.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal("v2", v, "upsert must overwrite")

	s.Require().NoError(s.kv.Delete(s.ctx, "k"))
	_, err = s.kv.Get(s.ctx, "k")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *PostgresKVSuite) TestKeysByPrefix() {
	s.Require().NoError(s.kv.Set(s.ctx, "wallet:session:token", "t"))
	s.Require().NoError(s.kv.Set(s.ctx, "humanity:credential:0xabc", "{}"))

	keys, err := s.kv.Keys(s.ctx, "wallet:")
	s.Require().NoError(err)
	s.Equal([]string{"wallet:session:token"}, keys)
}
