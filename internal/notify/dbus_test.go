package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/mpdnotify/internal/albumart"
)

// fakeBusObject records Notify calls. Only CallWithContext is implemented.
type fakeBusObject struct {
	dbus.BusObject

	method string
	args   []interface{}
	err    error
}

func (f *fakeBusObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	f.method = method
	f.args = args
	if f.err != nil {
		return &dbus.Call{Err: f.err}
	}
	return &dbus.Call{Body: []interface{}{uint32(42)}}
}

func TestDBusNotifier_Send(t *testing.T) {
	obj := &fakeBusObject{}
	n := newDBusNotifier(obj, nil)

	p := Payload{
		AppName:   "mpdnotify",
		Summary:   "Track1",
		Body:      "Artist\nAlbum",
		Icon:      "/music/Artist/Album/cover.jpg",
		HasArt:    true,
		GroupKey:  "mpd-notification",
		Timeout:   6 * time.Second,
		Transient: true,
	}
	require.NoError(t, n.Send(context.Background(), p))

	assert.Equal(t, "org.freedesktop.Notifications.Notify", obj.method)
	require.Len(t, obj.args, 8)
	assert.Equal(t, "mpdnotify", obj.args[0])
	assert.Equal(t, uint32(0), obj.args[1])
	assert.Equal(t, "/music/Artist/Album/cover.jpg", obj.args[2])
	assert.Equal(t, "Track1", obj.args[3])
	assert.Equal(t, "Artist\nAlbum", obj.args[4])
	assert.Equal(t, []string{}, obj.args[5])
	assert.Equal(t, int32(6000), obj.args[7])

	hints, ok := obj.args[6].(map[string]dbus.Variant)
	require.True(t, ok)
	assert.Equal(t, "mpd-notification", hints[HintSynchronous].Value())
	assert.Equal(t, "mpd-notification", hints[HintStackTag].Value())
	assert.Equal(t, "/music/Artist/Album/cover.jpg", hints[HintImagePath].Value())
	assert.Equal(t, true, hints[HintTransient].Value())
}

func TestDBusNotifier_SendError(t *testing.T) {
	obj := &fakeBusObject{err: errors.New("no server")}
	n := newDBusNotifier(obj, nil)

	err := n.Send(context.Background(), Payload{Summary: "x"})
	assert.Error(t, err)
}

func TestHints(t *testing.T) {
	t.Run("fallback icon", func(t *testing.T) {
		hints := Hints(Payload{Icon: "audio-x-generic", GroupKey: "g", Urgency: 1})

		assert.Equal(t, byte(1), hints[HintUrgency].Value())
		assert.Equal(t, CategoryTrack, hints[HintCategory].Value())
		assert.NotContains(t, hints, HintImagePath)
		assert.NotContains(t, hints, HintTransient)
		assert.NotContains(t, hints, HintImageData)
	})

	t.Run("no group key", func(t *testing.T) {
		hints := Hints(Payload{})
		assert.NotContains(t, hints, HintSynchronous)
		assert.NotContains(t, hints, HintStackTag)
	})

	t.Run("image data", func(t *testing.T) {
		img := &albumart.Image{Width: 1, Height: 1, Rowstride: 4, HasAlpha: true, BitsPerSample: 8, Channels: 4, Data: []byte{1, 2, 3, 4}}
		hints := Hints(Payload{Image: img})

		require.Contains(t, hints, HintImageData)
		assert.Equal(t, *img, hints[HintImageData].Value())
	})
}
