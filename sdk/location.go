package sdk

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/viant/firebridge/shared"
)

// LocationURL returns absolute location URL
func LocationURL(databaseURL, path string) string {
	base := strings.TrimRight(databaseURL, "/")
	if path = shared.JoinPath(path); path == "" {
		return base
	}
	segments := shared.SplitPath(path)
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return base + "/" + strings.Join(segments, "/")
}

// LocationPath returns database path of an absolute location URL, the URL has to belong to databaseURL
func LocationPath(databaseURL, locationURL string) (string, error) {
	base, err := url.Parse(strings.TrimRight(databaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid database URL %v: %w", databaseURL, err)
	}
	location, err := url.Parse(locationURL)
	if err != nil {
		return "", fmt.Errorf("invalid location URL %v: %w", locationURL, err)
	}
	if !strings.EqualFold(location.Host, base.Host) {
		return "", fmt.Errorf("location URL %v does not belong to database %v", locationURL, databaseURL)
	}
	return shared.JoinPath(location.Path), nil
}

// SameDatabase returns true if location URL belongs to database URL
func SameDatabase(databaseURL, locationURL string) bool {
	_, err := LocationPath(databaseURL, locationURL)
	return err == nil
}
