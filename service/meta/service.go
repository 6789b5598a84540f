// Package meta loads configuration documents from any location the abstract
// file system supports (file, mem, s3, gs, ...), expanding ${env.KEY}
// expressions before decoding.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service resolves and decodes configuration documents.
type Service struct {
	fs      afs.Service
	baseURL string
}

// New creates a meta service; baseURL anchors relative asset locations and
// may be empty when callers always pass absolute URLs.
func New(baseURL string) *Service {
	return &Service{fs: afs.New(), baseURL: baseURL}
}

// Load reads the asset at URL, expands environment expressions and decodes it
// into target. Assets with a .json extension decode as JSON, everything else
// as YAML.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	resolved := s.resolve(URL)
	data, err := s.fs.DownloadWithURL(ctx, resolved)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", resolved, err)
	}
	expanded := []byte(expandEnvExpr(string(data)))
	if strings.ToLower(path.Ext(resolved)) == ".json" {
		if err := json.Unmarshal(expanded, target); err != nil {
			return fmt.Errorf("failed to decode json %s: %w", resolved, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(expanded, target); err != nil {
		return fmt.Errorf("failed to decode yaml %s: %w", resolved, err)
	}
	return nil
}

// Exists reports whether the asset at URL is present.
func (s *Service) Exists(ctx context.Context, URL string) (bool, error) {
	return s.fs.Exists(ctx, s.resolve(URL))
}

func (s *Service) resolve(URL string) string {
	if s.baseURL == "" || strings.Contains(URL, "://") || strings.HasPrefix(URL, "/") {
		return URL
	}
	return url.Join(s.baseURL, URL)
}
