package infrastructure

import (
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestMemoryRepository_Get(t *testing.T) {
	repo := NewMemoryRepository()
	guildID := snowflake.ID(123)

	// Get should return nil if the queue doesn't exist
	if q := repo.Get(guildID); q != nil {
		t.Fatal("expected nil for non-existent queue")
	}

	created := repo.GetOrCreate(guildID)
	if created == nil {
		t.Fatal("expected queue after GetOrCreate")
	}

	if q := repo.Get(guildID); q != created {
		t.Error("expected same queue instance")
	}

	// Different guild should return nil
	if q := repo.Get(snowflake.ID(456)); q != nil {
		t.Error("expected nil for different guild")
	}
}

func TestMemoryRepository_GetOrCreate(t *testing.T) {
	repo := NewMemoryRepository()
	guildID := snowflake.ID(123)

	first := repo.GetOrCreate(guildID)
	second := repo.GetOrCreate(guildID)

	if first != second {
		t.Error("expected GetOrCreate to return the existing queue")
	}
	if first.GuildID() != guildID {
		t.Errorf("expected guild ID %d, got %d", guildID, first.GuildID())
	}
}

func TestMemoryRepository_Count(t *testing.T) {
	repo := NewMemoryRepository()

	if repo.Count() != 0 {
		t.Errorf("expected count 0, got %d", repo.Count())
	}

	repo.GetOrCreate(snowflake.ID(1))
	if repo.Count() != 1 {
		t.Errorf("expected count 1, got %d", repo.Count())
	}

	repo.GetOrCreate(snowflake.ID(2))
	repo.GetOrCreate(snowflake.ID(2))
	if repo.Count() != 2 {
		t.Errorf("expected count 2, got %d", repo.Count())
	}
}

func TestMemoryRepository_ConcurrentAccess(t *testing.T) {
	repo := NewMemoryRepository()
	var wg sync.WaitGroup

	// Concurrent creates for overlapping guilds
	for i := range 100 {
		wg.Go(func() {
			repo.GetOrCreate(snowflake.ID(i % 10))
		})
	}

	wg.Wait()

	if repo.Count() != 10 {
		t.Errorf("expected 10 queues, got %d", repo.Count())
	}

	// Concurrent gets
	for i := range 10 {
		wg.Go(func() {
			if q := repo.Get(snowflake.ID(i)); q == nil {
				t.Errorf("expected non-nil queue for guild %d", i)
			}
		})
	}

	wg.Wait()
}
