package photo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header is enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) Notify(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, title+"|"+message)
}

type fakeNative struct {
	uri     string
	err     error
	gotSrc  Source
	gotOpts Options
	busy    func() bool
	sawBusy bool
}

func (f *fakeNative) GetPhoto(_ context.Context, src Source, opts Options) (string, error) {
	f.gotSrc = src
	f.gotOpts = opts
	if f.busy != nil {
		f.sawBusy = f.busy()
	}
	return f.uri, f.err
}

func picker(path string, err error) FilePicker {
	return PickerFunc(func(context.Context) (string, error) { return path, err })
}

func TestCameraWithoutNativeSupport(t *testing.T) {
	rec := &recorder{}
	a := New(picker("", nil), rec)

	got := a.FromCamera(context.Background())
	assert.Empty(t, got)
	require.Len(t, rec.calls, 1)
	assert.Contains(t, strings.ToLower(rec.calls[0]), "camera unavailable")
	assert.False(t, a.Native())
}

func TestLibraryFallsBackToFilePicker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o600))

	rec := &recorder{}
	a := New(picker(path, nil), rec)

	got := a.FromLibrary(context.Background())
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"))
	assert.Empty(t, rec.calls)

	mime, data, err := DecodeDataURI(got)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngBytes, data)

	assert.Equal(t, got, a.FromEitherViaPrompt(context.Background()))
}

func TestFilePickerCancel(t *testing.T) {
	rec := &recorder{}
	assert.Empty(t, New(picker("", nil), rec).FromLibrary(context.Background()))
	assert.Empty(t, New(picker("x", ErrCancelled), rec).FromEitherViaPrompt(context.Background()))
	assert.Empty(t, rec.calls)
}

func TestFilePickerFailures(t *testing.T) {
	rec := &recorder{}
	a := New(picker("missing.png", nil), rec, WithReadFile(func(string) ([]byte, error) {
		return nil, os.ErrNotExist
	}))
	assert.Empty(t, a.FromLibrary(context.Background()))

	a = New(picker("notes.txt", nil), rec, WithReadFile(func(string) ([]byte, error) {
		return []byte("plain text"), nil
	}))
	assert.Empty(t, a.FromLibrary(context.Background()))

	a = New(picker("", errors.New("tty gone")), rec)
	assert.Empty(t, a.FromLibrary(context.Background()))

	require.Len(t, rec.calls, 3)
	assert.Contains(t, rec.calls[0], MsgFileFailed)
	assert.Contains(t, rec.calls[1], MsgFileFailed)
	assert.Contains(t, rec.calls[2], MsgPromptFailed)
}

func TestNativeDelegation(t *testing.T) {
	native := &fakeNative{uri: "data:image/jpeg;base64,AAAA"}
	rec := &recorder{}
	a := New(picker("", nil), rec, WithNative(native))
	native.busy = a.Busy

	assert.Equal(t, native.uri, a.FromCamera(context.Background()))
	assert.Equal(t, SourceCamera, native.gotSrc)
	assert.Equal(t, Options{Quality: 90, AllowEditing: true}, native.gotOpts)
	assert.True(t, native.sawBusy)
	assert.False(t, a.Busy())

	assert.Equal(t, native.uri, a.FromLibrary(context.Background()))
	assert.Equal(t, SourceLibrary, native.gotSrc)

	assert.Equal(t, native.uri, a.FromEitherViaPrompt(context.Background()))
	assert.Equal(t, SourcePrompt, native.gotSrc)
	assert.Empty(t, rec.calls)
}

func TestNativeFailureIsNonFatal(t *testing.T) {
	rec := &recorder{}
	a := New(picker("", nil), rec, WithNative(&fakeNative{err: errors.New("permission denied")}))

	assert.Empty(t, a.FromCamera(context.Background()))
	assert.Empty(t, a.FromLibrary(context.Background()))
	assert.False(t, a.Busy())
	require.Len(t, rec.calls, 2)
	assert.Contains(t, rec.calls[0], MsgCameraFailed)
	assert.Contains(t, rec.calls[1], MsgLibraryFailed)

	a = New(picker("", nil), rec, WithNative(&fakeNative{err: ErrCancelled}))
	assert.Empty(t, a.FromLibrary(context.Background()))
	require.Len(t, rec.calls, 3)
	assert.Contains(t, rec.calls[2], MsgLibraryFailed)
}

func TestEncodeDataURIRejectsNonImage(t *testing.T) {
	_, err := EncodeDataURI([]byte("hello"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, _, err = DecodeDataURI("http://example.com/a.png")
	assert.Error(t, err)
}

func TestTermux(t *testing.T) {
	dir := t.TempDir()
	var ran []string
	tm := NewTermux(dir)
	tm.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		ran = append(ran, name)
		if name == "termux-dialog" {
			return []byte(`{"code":-1,"text":"Camera","index":0}`), nil
		}
		return nil, os.WriteFile(args[len(args)-1], pngBytes, 0o600)
	}

	uri, err := tm.GetPhoto(context.Background(), SourcePrompt, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.Equal(t, []string{"termux-dialog", "termux-camera-photo"}, ran)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestTermuxCancelled(t *testing.T) {
	tm := NewTermux(t.TempDir())
	tm.run = func(_ context.Context, name string, _ ...string) ([]byte, error) {
		if name == "termux-dialog" {
			return []byte(`{"code":-2}`), nil
		}
		return nil, nil
	}
	_, err := tm.GetPhoto(context.Background(), SourcePrompt, DefaultOptions())
	assert.ErrorIs(t, err, ErrCancelled)

	// storage picker backed out without writing a file
	_, err = tm.GetPhoto(context.Background(), SourceLibrary, DefaultOptions())
	assert.ErrorIs(t, err, ErrCancelled)

	rec := &recorder{}
	a := New(picker("", nil), rec, WithNative(tm))
	assert.Empty(t, a.FromEitherViaPrompt(context.Background()))
	require.Len(t, rec.calls, 1)
	assert.Contains(t, rec.calls[0], MsgPromptFailed)
}
