package cli

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
)

// dataURL reads path and encodes it as a data: URL, the opaque payload
// format stored in entry media fields.
func dataURL(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	return "data:" + http.DetectContentType(b) + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

func dataURLs(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		u, err := dataURL(p)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
