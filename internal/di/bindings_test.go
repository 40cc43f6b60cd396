package di

import (
	"testing"
	"weightsync/internal/models"
	"weightsync/internal/notify"
	"weightsync/internal/structures"
	"weightsync/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestProvideNotifier_ClearsCacheAfterSync(t *testing.T) {
	cache := testutil.NewMockCache()
	hub := notify.NewNotifyProvider(&structures.Config{}, &testutil.MockLogger{})
	notifier := provideNotifier(hub, cache)

	cache.Set("records:pending", []byte("[]"))
	notifier.NotifyDrain(models.DrainResult{Failed: 2})
	_, cached := cache.Get("records:pending")
	assert.True(t, cached, "nothing changed state")

	notifier.NotifyDrain(models.DrainResult{Synced: 1, Failed: 1})
	_, cached = cache.Get("records:pending")
	assert.False(t, cached)
}

func TestProvideNoNotifier(t *testing.T) {
	assert.Nil(t, provideNoNotifier())
}
