package snapshothub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/docstore/snapshothub"
)

func TestPublishReachesSubscriber(t *testing.T) {
	hub := snapshothub.NewHub()
	sub := hub.Subscribe("assets")
	defer sub.Close()

	hub.Publish("assets", domain.Snapshot{Docs: make([]domain.Document, 3)})

	select {
	case snap := <-sub.Events():
		assert.Len(t, snap.Docs, 3)
	default:
		t.Fatal("no snapshot delivered")
	}
}

func TestPublishIsScopedToCollection(t *testing.T) {
	hub := snapshothub.NewHub()
	sub := hub.Subscribe("assets")
	defer sub.Close()

	hub.Publish("approvals", domain.Snapshot{Docs: make([]domain.Document, 1)})

	select {
	case <-sub.Events():
		t.Fatal("snapshot crossed collections")
	default:
	}
}

func TestSlowSubscriberKeepsNewestSnapshot(t *testing.T) {
	hub := snapshothub.NewHub()
	sub := hub.Subscribe("assets")
	defer sub.Close()

	// Overflow the subscriber buffer without reading. Intermediate
	// snapshots may drop, but the last publish must survive.
	total := snapshothub.DefaultSubscriberBuffer + 4
	for i := 1; i <= total; i++ {
		hub.Publish("assets", domain.Snapshot{Docs: make([]domain.Document, i)})
	}

	var last *domain.Snapshot
	for {
		select {
		case snap := <-sub.Events():
			last = &snap
			continue
		default:
		}
		break
	}
	require.NotNil(t, last)
	assert.Len(t, last.Docs, total)
}
