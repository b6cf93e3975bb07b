package photo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Termux drives the Termux:API camera and storage commands on Android.
// Those commands take no quality or editing flags, so Options are ignored.
type Termux struct {
	tmpDir string
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
	read   func(string) ([]byte, error)
}

// DetectTermux returns a native service when running inside Termux with
// the API package installed, nil otherwise.
func DetectTermux() NativeService {
	if os.Getenv("TERMUX_VERSION") == "" {
		return nil
	}
	if _, err := exec.LookPath("termux-camera-photo"); err != nil {
		return nil
	}
	return NewTermux(os.TempDir())
}

func NewTermux(tmpDir string) *Termux {
	return &Termux{
		tmpDir: tmpDir,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
		read: os.ReadFile,
	}
}

type sheetResult struct {
	Code  int    `json:"code"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

func (t *Termux) GetPhoto(ctx context.Context, src Source, _ Options) (string, error) {
	if src == SourcePrompt {
		out, err := t.run(ctx, "termux-dialog", "sheet", "-t", "Profile photo", "-v", "Camera,Library")
		if err != nil {
			return "", fmt.Errorf("termux-dialog: %w", err)
		}
		var res sheetResult
		if err := json.Unmarshal(out, &res); err != nil {
			return "", fmt.Errorf("termux-dialog output: %w", err)
		}
		switch res.Text {
		case "Camera":
			src = SourceCamera
		case "Library":
			src = SourceLibrary
		default:
			return "", ErrCancelled
		}
	}

	dst := filepath.Join(t.tmpDir, fmt.Sprintf("synergy-photo-%s.jpg", src))
	defer os.Remove(dst)

	var err error
	switch src {
	case SourceCamera:
		_, err = t.run(ctx, "termux-camera-photo", "-c", "0", dst)
	default:
		_, err = t.run(ctx, "termux-storage-get", dst)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", src, err)
	}

	data, err := t.read(dst)
	if os.IsNotExist(err) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrCancelled
	}
	return EncodeDataURI(data)
}
