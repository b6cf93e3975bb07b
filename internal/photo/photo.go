// Package photo acquires a profile picture from the device and returns it
// as a data URI. Every failure is reported through the Notifier and turns
// into an empty result.
package photo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

type Source int

const (
	SourcePrompt Source = iota
	SourceLibrary
	SourceCamera
)

func (s Source) String() string {
	switch s {
	case SourceLibrary:
		return "library"
	case SourceCamera:
		return "camera"
	}
	return "prompt"
}

var (
	ErrCancelled         = errors.New("photo selection cancelled")
	ErrCameraUnavailable = errors.New("camera unavailable")
	ErrNotImage          = errors.New("file is not an image")
)

// User-facing notification text
const (
	MsgCameraUnavailable = "Camera unavailable: the camera is only available on mobile devices"
	MsgLibraryFailed     = "Failed to select photo from library"
	MsgCameraFailed      = "Failed to take photo"
	MsgPromptFailed      = "Failed to select photo"
	MsgFileFailed        = "Could not read the selected file"
)

// Options are passed to the native photo service
type Options struct {
	Quality      int
	AllowEditing bool
}

func DefaultOptions() Options {
	return Options{Quality: 90, AllowEditing: true}
}

// NativeService is the platform photo API. It returns a data URI.
type NativeService interface {
	GetPhoto(ctx context.Context, src Source, opts Options) (string, error)
}

// FilePicker lets the user choose a file. An empty path or ErrCancelled
// means the user backed out.
type FilePicker interface {
	PickFile(ctx context.Context) (string, error)
}

// PickerFunc adapts a function to FilePicker
type PickerFunc func(ctx context.Context) (string, error)

func (f PickerFunc) PickFile(ctx context.Context) (string, error) { return f(ctx) }

// Notifier surfaces transient errors to the user
type Notifier interface {
	Notify(title, message string)
}

type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// Adapter picks the native service when there is one and falls back to
// the file picker otherwise.
type Adapter struct {
	native   NativeService // nil off-device
	picker   FilePicker
	notify   Notifier
	log      *zap.Logger
	opts     Options
	readFile func(string) ([]byte, error)
	busy     atomic.Bool
}

type Option func(*Adapter)

func WithNative(n NativeService) Option { return func(a *Adapter) { a.native = n } }
func WithOptions(o Options) Option     { return func(a *Adapter) { a.opts = o } }
func WithLogger(l *zap.Logger) Option  { return func(a *Adapter) { a.log = l } }

func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(a *Adapter) { a.readFile = fn }
}

func New(picker FilePicker, notify Notifier, opts ...Option) *Adapter {
	a := &Adapter{
		picker:   picker,
		notify:   notify,
		log:      zap.NewNop(),
		opts:     DefaultOptions(),
		readFile: os.ReadFile,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Native reports whether a platform photo service is available
func (a *Adapter) Native() bool { return a.native != nil }

// Busy is true while a native call is in flight
func (a *Adapter) Busy() bool { return a.busy.Load() }

func (a *Adapter) FromLibrary(ctx context.Context) string {
	if a.native == nil {
		return a.fromFile(ctx)
	}
	return a.callNative(ctx, SourceLibrary, MsgLibraryFailed)
}

func (a *Adapter) FromCamera(ctx context.Context) string {
	if a.native == nil {
		a.log.Info("camera requested without native support")
		a.notify.Notify("Camera unavailable", MsgCameraUnavailable)
		return ""
	}
	return a.callNative(ctx, SourceCamera, MsgCameraFailed)
}

// FromEitherViaPrompt lets the platform ask the user where the photo comes
// from.
func (a *Adapter) FromEitherViaPrompt(ctx context.Context) string {
	if a.native == nil {
		return a.fromFile(ctx)
	}
	return a.callNative(ctx, SourcePrompt, MsgPromptFailed)
}

func (a *Adapter) callNative(ctx context.Context, src Source, failMsg string) string {
	a.busy.Store(true)
	defer a.busy.Store(false)

	uri, err := a.native.GetPhoto(ctx, src, a.opts)
	if err != nil {
		a.log.Warn("native photo request failed", zap.Stringer("source", src), zap.Error(err))
		a.notify.Notify("Photo Error", failMsg)
		return ""
	}
	return uri
}

func (a *Adapter) fromFile(ctx context.Context) string {
	path, err := a.picker.PickFile(ctx)
	if errors.Is(err, ErrCancelled) || (err == nil && strings.TrimSpace(path) == "") {
		return ""
	}
	if err != nil {
		a.log.Warn("file picker failed", zap.Error(err))
		a.notify.Notify("Photo Error", MsgPromptFailed)
		return ""
	}

	data, err := a.readFile(strings.TrimSpace(path))
	if err != nil {
		a.log.Warn("reading picked file failed", zap.String("path", path), zap.Error(err))
		a.notify.Notify("Photo Error", MsgFileFailed)
		return ""
	}
	uri, err := EncodeDataURI(data)
	if err != nil {
		a.notify.Notify("Photo Error", MsgFileFailed)
		return ""
	}
	return uri
}

// EncodeDataURI sniffs the content type and base64-encodes data
func EncodeDataURI(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s: %w", mime, ErrNotImage)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURI returns the media type and payload of a base64 data URI
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri")
	}
	mime, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return "", nil, fmt.Errorf("data uri is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mime, data, nil
}
