// Package maven fetches plugin version metadata from Maven-layout
// repositories, such as the Gradle plugin portal.
package maven

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/ajturnerora/rewrite/domain"
)

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 2

	// maxMetadataBytes caps the response body; version listings are small.
	maxMetadataBytes = 4 << 20
)

// MetadataFetcher implements domain.MetadataFetcher over HTTP. Retry and
// timeout policy lives here; the engine imposes none.
type MetadataFetcher struct {
	client *retryablehttp.Client
}

var _ domain.MetadataFetcher = (*MetadataFetcher)(nil)

// NewMetadataFetcher creates a fetcher with default retry policy.
func NewMetadataFetcher() *MetadataFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = maxRetries
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = nil
	return &MetadataFetcher{client: client}
}

// metadataDocument mirrors the maven-metadata.xml layout.
type metadataDocument struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// FetchMetadata downloads the version listing for the coordinate, trying
// repositories in the caller-supplied priority order and returning the first
// successful answer. When every repository fails, the error is a
// *domain.MetadataUnavailableError wrapping the last failure.
func (f *MetadataFetcher) FetchMetadata(
	ctx context.Context,
	coordinate domain.GroupArtifact,
	repositories []domain.Repository,
) (domain.RepositoryMetadata, error) {
	var lastErr error
	for _, repo := range repositories {
		metadata, err := f.fetchFrom(ctx, coordinate, repo)
		if err != nil {
			logger.Debugf(
				"[maven] %s:%s not answered by %q: %v",
				coordinate.Group, coordinate.Artifact, repo.ID, err,
			)
			lastErr = err
			continue
		}
		return metadata, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no repositories configured")
	}
	return domain.RepositoryMetadata{}, &domain.MetadataUnavailableError{
		Coordinate: coordinate,
		Err:        lastErr,
	}
}

func (f *MetadataFetcher) fetchFrom(
	ctx context.Context,
	coordinate domain.GroupArtifact,
	repo domain.Repository,
) (domain.RepositoryMetadata, error) {
	url := metadataURL(repo.URI, coordinate)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.RepositoryMetadata{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.RepositoryMetadata{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RepositoryMetadata{}, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return domain.RepositoryMetadata{}, fmt.Errorf("failed to read response: %w", err)
	}

	var doc metadataDocument
	if unmarshalErr := xml.Unmarshal(body, &doc); unmarshalErr != nil {
		return domain.RepositoryMetadata{}, fmt.Errorf("failed to parse metadata from %s: %w", url, unmarshalErr)
	}

	return domain.RepositoryMetadata{
		Coordinate: coordinate,
		Versions:   doc.Versioning.Versions,
	}, nil
}

// metadataURL builds the Maven-layout metadata path:
// <base>/<group as path>/<artifact>/maven-metadata.xml.
func metadataURL(baseURI string, coordinate domain.GroupArtifact) string {
	groupPath := strings.ReplaceAll(coordinate.Group, ".", "/")
	return fmt.Sprintf(
		"%s/%s/%s/maven-metadata.xml",
		strings.TrimSuffix(baseURI, "/"), groupPath, coordinate.Artifact,
	)
}
