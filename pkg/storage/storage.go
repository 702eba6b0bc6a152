// Package storage persists uploaded CV files and hands back the public path
// recorded on the candidate.
package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"path"
	"strings"
	"time"
)

// PublicPrefix is the path prefix of every stored CV, e.g. uploads/cv/<name>.
const PublicPrefix = "uploads/cv"

// Store saves and removes CV files.
type Store interface {
	// Save writes r under name and returns the public path.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete removes a file by the path Save returned. Missing files are not
	// an error.
	Delete(ctx context.Context, path string) error
}

// GenerateName returns a collision-resistant file name of the form
// <unix-millis>-<random><ext>.
func GenerateName(ext string) string {
	return fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000), strings.ToLower(ext))
}

// PublicPath returns the path recorded for a stored file name.
func PublicPath(name string) string {
	return path.Join(PublicPrefix, name)
}

// nameFromPath extracts and checks the file name of a public path.
func nameFromPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if !strings.HasPrefix(p, PublicPrefix+"/") {
		return "", fmt.Errorf("storage: path %q is outside %s", p, PublicPrefix)
	}
	name := strings.TrimPrefix(p, PublicPrefix+"/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") || name == "." || name == ".." {
		return "", fmt.Errorf("storage: invalid file name %q", name)
	}
	return name, nil
}
