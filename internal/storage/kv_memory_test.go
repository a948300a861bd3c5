package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

// MemoryKVSuite exercises the KV contract against the in-memory implementation.
//
// Justification: prefix enumeration backs the session purge that must run
// before every wallet connect; a missed key leaks stale session state into a
// fresh connect attempt.
type MemoryKVSuite struct {
	suite.Suite
	kv  *MemoryKV
	ctx context.Context
}

func (s *MemoryKVSuite) SetupTest() {
	s.kv = NewMemoryKV()
	s.ctx = context.Background()
}

func TestMemoryKVSuite(t *testing.T) {
	suite.Run(t, new(MemoryKVSuite))
}

func (s *MemoryKVSuite) TestGetMissingReturnsErrNotFound() {
	_, err := s.kv.Get(s.ctx, "absent")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryKVSuite) TestSetOverwrites() {
	s.Require().NoError(s.kv.Set(s.ctx, "k", "v1"))
	s.Require().NoError(s.kv.Set(s.ctx, "k", "v2"))

	v, err := s.kv.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal("v2", v)
}

func (s *MemoryKVSuite) TestDeleteAbsentIsNoop() {
	s.NoError(s.kv.Delete(s.ctx, "absent"))
}

func (s *MemoryKVSuite) TestKeysByPrefix() {
	s.Require().NoError(s.kv.Set(s.ctx, "wallet:session:token", "t"))
	s.Require().NoError(s.kv.Set(s.ctx, "wallet:known-addresses", "[]"))
	s.Require().NoError(s.kv.Set(s.ctx, "humanity:credential:0xabc", "{}"))

	keys, err := s.kv.Keys(s.ctx, "wallet:")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"wallet:session:token", "wallet:known-addresses"}, keys)
}

func (s *MemoryKVSuite) TestDeletePrefixSweepsAllMatches() {
	s.Require().NoError(s.kv.Set(s.ctx, "wallet:session:token", "t"))
	s.Require().NoError(s.kv.Set(s.ctx, "wallet:session:expiry", "e"))
	s.Require().NoError(s.kv.Set(s.ctx, "humanity:credential:0xabc", "{}"))

	s.Require().NoError(DeletePrefix(s.ctx, s.kv, "wallet:session:"))

	s.Equal(1, s.kv.Len())
	_, err := s.kv.Get(s.ctx, "humanity:credential:0xabc")
	s.NoError(err)
}
