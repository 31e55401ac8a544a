// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/donalf/yt2spot/internal/services"
)

// MockLibrary is a configurable test double for [services.LibraryService].
type MockLibrary struct {
	Candidates []services.Candidate
	Target     *services.TargetPlaylist
	Err        error
	Added      [][]string
}

func (m *MockLibrary) SearchTracks(context.Context, string, int) ([]services.Candidate, error) {
	return m.Candidates, m.Err
}

func (m *MockLibrary) Playlist(context.Context, string) (*services.TargetPlaylist, error) {
	return m.Target, m.Err
}

func (m *MockLibrary) CreatePlaylist(_ context.Context, name string, public bool) (*services.TargetPlaylist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &services.TargetPlaylist{ID: "mock-playlist", Name: name, Public: public}, nil
}

func (m *MockLibrary) AddTracks(_ context.Context, _ string, uris []string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Added = append(m.Added, uris)
	return nil
}

func (m *MockLibrary) Name() string { return "mock" }

// MockSource is a configurable test double for [services.SourceService].
type MockSource struct {
	PlaylistMeta  *services.SourcePlaylist
	PlaylistItems []services.SourceItem
	Err           error
}

func (m *MockSource) Playlist(context.Context, string) (*services.SourcePlaylist, error) {
	return m.PlaylistMeta, m.Err
}

func (m *MockSource) Items(context.Context, string) ([]services.SourceItem, error) {
	return m.PlaylistItems, m.Err
}

func (m *MockSource) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
