package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/claydohscope/storefront/internal/notify"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestToaster_HidesAfterDuration(t *testing.T) {
	hidden := make(chan notify.Toast, 1)
	toaster := notify.NewToaster(
		notify.WithDuration(20*time.Millisecond),
		notify.WithOnChange(func(toast notify.Toast) {
			if !toast.Visible {
				hidden <- toast
			}
		}),
	)

	toaster.Show("Bunny added to cart")
	assert.Equal(t, notify.Toast{Message: "Bunny added to cart", Visible: true}, toaster.Current())

	select {
	case toast := <-hidden:
		assert.Equal(t, "Bunny added to cart", toast.Message)
	case <-time.After(time.Second):
		t.Fatal("toast was never hidden")
	}
	assert.False(t, toaster.Current().Visible)
}

func TestToaster_ShowRestartsTimer(t *testing.T) {
	var mu sync.Mutex
	var hides int
	toaster := notify.NewToaster(
		notify.WithDuration(200*time.Millisecond),
		notify.WithOnChange(func(toast notify.Toast) {
			if !toast.Visible {
				mu.Lock()
				hides++
				mu.Unlock()
			}
		}),
	)
	defer toaster.Stop()

	toaster.Show("first")
	time.Sleep(120 * time.Millisecond)
	toaster.Show("second")
	time.Sleep(120 * time.Millisecond)

	// the first timer would have fired by now had it not been replaced
	current := toaster.Current()
	assert.True(t, current.Visible)
	assert.Equal(t, "second", current.Message)

	require.Eventually(t, func() bool { return !toaster.Current().Visible }, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, hides)
	mu.Unlock()
}

func TestToaster_Hide(t *testing.T) {
	var changes []notify.Toast
	toaster := notify.NewToaster(notify.WithOnChange(func(toast notify.Toast) {
		changes = append(changes, toast)
	}))

	toaster.Hide()
	assert.Empty(t, changes)

	toaster.Show("hello")
	toaster.Hide()
	toaster.Hide()

	assert.Equal(t, []notify.Toast{
		{Message: "hello", Visible: true},
		{Message: "hello", Visible: false},
	}, changes)
}

func TestToaster_DefaultDuration(t *testing.T) {
	toaster := notify.NewToaster(notify.WithDuration(0))
	defer toaster.Stop()

	toaster.Show("x")
	assert.Equal(t, 3000*time.Millisecond, notify.DefaultDuration)
	assert.True(t, toaster.Current().Visible)
}
