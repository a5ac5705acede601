package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heyq/internal/domain/entity"
)

func explicit(kind entity.EntityKind, value string) entity.Entity {
	return entity.Entity{Kind: kind, Value: value, Confidence: entity.ConfidenceExplicit}
}

func TestResolveFillsGapsFromPreviousTurn(t *testing.T) {
	s := NewStore()

	s.Update("s1", entity.EntitySet{
		entity.EntitySite:    explicit(entity.EntitySite, "saucedemo.com"),
		entity.EntityProduct: explicit(entity.EntityProduct, "backpack"),
	})

	// Next turn names no product; it carries over, tagged inferred.
	resolved := s.Resolve("s1", entity.EntitySet{
		entity.EntitySite: explicit(entity.EntitySite, "saucedemo.com"),
	})

	require.True(t, resolved.Has(entity.EntityProduct))
	assert.Equal(t, "backpack", resolved.Value(entity.EntityProduct))
	assert.Equal(t, entity.ConfidenceInferred, resolved[entity.EntityProduct].Confidence)
	assert.Equal(t, entity.ConfidenceExplicit, resolved[entity.EntitySite].Confidence)
}

func TestResolveFreshWinsOverRemembered(t *testing.T) {
	s := NewStore()
	s.Update("s1", entity.EntitySet{
		entity.EntityProduct: explicit(entity.EntityProduct, "backpack"),
	})

	resolved := s.Resolve("s1", entity.EntitySet{
		entity.EntityProduct: explicit(entity.EntityProduct, "t-shirt"),
	})
	assert.Equal(t, "t-shirt", resolved.Value(entity.EntityProduct))
	assert.Equal(t, entity.ConfidenceExplicit, resolved[entity.EntityProduct].Confidence)
}

func TestResolveUnknownSessionReturnsInputClone(t *testing.T) {
	s := NewStore()
	fresh := entity.EntitySet{
		entity.EntitySite: explicit(entity.EntitySite, "saucedemo.com"),
	}
	resolved := s.Resolve("nobody", fresh)
	assert.Equal(t, fresh.Value(entity.EntitySite), resolved.Value(entity.EntitySite))

	// Mutating the result must not reach the caller's set.
	resolved[entity.EntityProduct] = explicit(entity.EntityProduct, "backpack")
	assert.False(t, fresh.Has(entity.EntityProduct))
}

func TestClearDropsSession(t *testing.T) {
	s := NewStore()
	s.Update("s1", entity.EntitySet{
		entity.EntityProduct: explicit(entity.EntityProduct, "backpack"),
	})
	require.Equal(t, 1, s.Len())

	s.Clear("s1")
	assert.Equal(t, 0, s.Len())

	resolved := s.Resolve("s1", entity.EntitySet{})
	assert.False(t, resolved.Has(entity.EntityProduct))
}

func TestLastSite(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.LastSite("s1"))

	s.Update("s1", entity.EntitySet{
		entity.EntitySite: explicit(entity.EntitySite, "saucedemo.com"),
	})
	assert.Equal(t, "saucedemo.com", s.LastSite("s1"))

	// An update without a site keeps the remembered one.
	s.Update("s1", entity.EntitySet{
		entity.EntityProduct: explicit(entity.EntityProduct, "backpack"),
	})
	assert.Equal(t, "saucedemo.com", s.LastSite("s1"))
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStore()
	s.Update("alice", entity.EntitySet{
		entity.EntityProduct: explicit(entity.EntityProduct, "backpack"),
	})
	resolved := s.Resolve("bob", entity.EntitySet{})
	assert.False(t, resolved.Has(entity.EntityProduct))
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := NewStore(WithCapacity(2))
	for i := 0; i < 3; i++ {
		s.Update(fmt.Sprintf("s%d", i), entity.EntitySet{
			entity.EntitySite: explicit(entity.EntitySite, "saucedemo.com"),
		})
	}
	assert.Equal(t, 2, s.Len())
	assert.Empty(t, s.LastSite("s0"))
	assert.Equal(t, "saucedemo.com", s.LastSite("s2"))
}

func TestTTLExpiry(t *testing.T) {
	s := NewStore(WithTTL(20 * time.Millisecond))
	s.Update("s1", entity.EntitySet{
		entity.EntitySite: explicit(entity.EntitySite, "saucedemo.com"),
	})
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, s.LastSite("s1"))
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n%4)
			for j := 0; j < 50; j++ {
				s.Update(id, entity.EntitySet{
					entity.EntityProduct: explicit(entity.EntityProduct, "backpack"),
				})
				_ = s.Resolve(id, entity.EntitySet{})
				_ = s.LastSite(id)
			}
		}(i)
	}
	wg.Wait()
}
