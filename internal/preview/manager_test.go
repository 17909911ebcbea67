package preview

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/ghibli-studio/internal/adapters/events/direct"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
	"github.com/tjfontaine/ghibli-studio/internal/storage/memory"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestManager_AcquireReplacesPrevious(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)

	first, err := m.Acquire(domain.SlotResult, pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Reference, "blob:"))
	assert.Equal(t, "image/png", first.MIMEType)

	second, err := m.Acquire(domain.SlotResult, []byte("second"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Reference, second.Reference)

	_, ok := m.Resolve(first.Reference)
	assert.False(t, ok, "previous handle must be revoked")
	data, ok := m.Resolve(second.Reference)
	assert.True(t, ok)
	assert.Equal(t, []byte("second"), data)

	assert.Equal(t, 1, m.LiveCount())
	assert.Equal(t, 1, store.Len())
}

func TestManager_SlotsAreIndependent(t *testing.T) {
	m := NewManager(nil)

	_, err := m.Acquire(domain.SlotInputPreview, pngHeader)
	require.NoError(t, err)
	_, err = m.Acquire(domain.SlotResult, pngHeader)
	require.NoError(t, err)
	assert.Equal(t, 2, m.LiveCount())

	m.Release(domain.SlotInputPreview)
	assert.Equal(t, 1, m.LiveCount())
	_, ok := m.Handle(domain.SlotResult)
	assert.True(t, ok)
}

func TestManager_ReleaseEmptySlotIsNoop(t *testing.T) {
	m := NewManager(nil)
	m.Release(domain.SlotResult)
	m.Release(domain.SlotResult)
	assert.Equal(t, 0, m.LiveCount())
}

func TestManager_CloseReleasesEverything(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)

	_, _ = m.Acquire(domain.SlotInputPreview, pngHeader)
	_, _ = m.Acquire(domain.SlotResult, pngHeader)

	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.LiveCount())
	assert.Equal(t, 0, store.Len())

	_, err := m.Acquire(domain.SlotResult, pngHeader)
	assert.ErrorIs(t, err, domain.ErrClosed)
}

func TestManager_ConcurrentAcquireKeepsOneHandle(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Acquire(domain.SlotResult, pngHeader)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.LiveCount())
	assert.Equal(t, 1, store.Len(), "every replaced handle must have been revoked")
}

func TestManager_PublishesSlotEvents(t *testing.T) {
	journal := memory.New()
	publisher, err := direct.NewPublisher(journal)
	require.NoError(t, err)

	m := NewManager(nil, WithPublisher(publisher))
	h, err := m.Acquire(domain.SlotResult, pngHeader)
	require.NoError(t, err)
	m.Release(domain.SlotResult)

	events, err := journal.ListEvents(t.Context(), string(domain.SlotResult), 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, h.Reference, events[0].To)
	assert.Equal(t, h.Reference, events[1].From)
	assert.Empty(t, events[1].To)
}

func TestManager_Export(t *testing.T) {
	created := time.UnixMilli(1760500000000)
	m := NewManager(nil, WithNow(func() time.Time { return created }))

	_, err := m.Export(domain.SlotResult, t.TempDir())
	assert.Error(t, err, "empty slot cannot be exported")

	_, err = m.Acquire(domain.SlotResult, pngHeader)
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := m.Export(domain.SlotResult, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ghibli-art-1760500000000.png"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, written)
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		"image/png":                ".png",
		"image/jpeg":               ".jpg",
		"image/webp":               ".webp",
		"image/gif":                ".gif",
		"application/octet-stream": ".png",
	}
	for mimeType, want := range tests {
		if got := extensionFor(mimeType); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", mimeType, got, want)
		}
	}
}
