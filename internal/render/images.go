package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// SaveImages decodes the base64 payloads in resp and writes
// step_<n>_rgb.png and step_<n>_segmentation.png under dir, creating
// it if needed.
func SaveImages(dir string, resp *Response) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := saveImage(dir, resp.Step, "rgb", resp.RGB); err != nil {
		return err
	}
	return saveImage(dir, resp.Step, "segmentation", resp.Segmentation)
}

func saveImage(dir string, step int, kind, b64 string) error {
	if b64 == "" {
		return fmt.Errorf("render: missing %s image for step %d", kind, step)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("render: decode %s image: %w", kind, err)
	}
	if !bytes.HasPrefix(raw, pngMagic) {
		return fmt.Errorf("render: %s payload for step %d is not a png", kind, step)
	}
	path := filepath.Join(dir, fmt.Sprintf("step_%d_%s.png", step, kind))
	return os.WriteFile(path, raw, 0644)
}
