// Package manifest serves DASH manifests to a player with segment URLs pointing back at the origin CDN.
package manifest

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/zencoder/go-dash/mpd"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetch downloads and parses the MPD at src.
func Fetch(ctx context.Context, client Doer, src string) (*mpd.MPD, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)

	if err != nil {
		return nil, errors.Wrap(err, "create GET manifest request")
	}

	res, err := client.Do(req)

	if err != nil {
		return nil, errors.Wrap(err, "get manifest")
	}

	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, errors.Errorf("bad http code: %s: %s", res.Status, body)
	}

	manifest, err := mpd.Read(res.Body)

	if err != nil {
		return nil, errors.Wrap(err, "parse manifest")
	}

	return manifest, nil
}

// Rewrite points the manifest BaseURL at the directory holding src. With stripText set, subtitle
// adaptation sets are removed.
func Rewrite(manifest *mpd.MPD, src string, stripText bool) error {
	u, err := url.Parse(src)

	if err != nil {
		return errors.Wrap(err, "parse manifest url")
	}

	u.RawQuery = ""
	u.Fragment = ""
	manifest.BaseURL = u.ResolveReference(&url.URL{Path: "./"}).String()

	if !stripText {
		return nil
	}

	for _, period := range manifest.Periods {
		if period == nil {
			continue
		}

		sets := period.AdaptationSets[:0]

		for _, set := range period.AdaptationSets {
			if set != nil && set.ContentType != nil && *set.ContentType == "text" {
				continue
			}

			sets = append(sets, set)
		}

		period.AdaptationSets = sets
	}

	return nil
}
