package pipeline_test

import (
	"referralflow/internal/pipeline"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{
			name: "lowercase scheme and host; add root path",
			in:   "HTTPS://Jobs.Example.COM",
			out:  "https://jobs.example.com/",
			ok:   true,
		},
		{
			name: "remove default ports",
			in:   "https://example.com:443/jobs/search",
			out:  "https://example.com/jobs/search",
			ok:   true,
		},
		{
			name: "keep non-default port",
			in:   "http://localhost:8080/",
			out:  "http://localhost:8080/",
			ok:   true,
		},
		{
			name: "clean path and drop trailing slash",
			in:   "https://example.com//jobs/./search/../search/",
			out:  "https://example.com/jobs/search",
			ok:   true,
		},
		{
			name: "sort query keys and values",
			in:   "https://example.com/jobs?location=Berlin&keywords=Go+Engineer",
			out:  "https://example.com/jobs?keywords=Go+Engineer&location=Berlin",
			ok:   true,
		},
		{
			name: "remove fragment",
			in:   "https://example.com/jobs?x=1#results",
			out:  "https://example.com/jobs?x=1",
			ok:   true,
		},
		{
			name: "invalid url",
			in:   "http://exa mple.com",
		},
		{
			name: "unsupported scheme",
			in:   "ftp://example.com/jobs",
		},
		{
			name: "relative url",
			in:   "/jobs/search",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pipeline.NormalizeURL(tc.in)
			if !tc.ok {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, got)
		})
	}
}

func TestBuildQueryURLs(t *testing.T) {
	urls, err := pipeline.BuildQueryURLs("Software Engineer",
		[]string{"https://www.linkedin.com/jobs/search/", "https://jobs.example.com/search?sort=date"},
		[]string{"Berlin", " ", "Berlin"})
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://www.linkedin.com/jobs/search?keywords=Software+Engineer&location=Berlin",
		"https://www.linkedin.com/jobs/search?keywords=Software+Engineer",
		"https://jobs.example.com/search?keywords=Software+Engineer&location=Berlin&sort=date",
		"https://jobs.example.com/search?keywords=Software+Engineer&sort=date",
	}, urls)
}

func TestBuildQueryURLs_NoLocations(t *testing.T) {
	urls, err := pipeline.BuildQueryURLs("Go Developer", []string{"https://www.linkedin.com/jobs/search/"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.linkedin.com/jobs/search?keywords=Go+Developer"}, urls)
}

func TestBuildQueryURLs_Errors(t *testing.T) {
	_, err := pipeline.BuildQueryURLs("", []string{"https://www.linkedin.com/jobs/search/"}, nil)
	require.Error(t, err)

	_, err = pipeline.BuildQueryURLs("Go Developer", nil, nil)
	require.Error(t, err)

	_, err = pipeline.BuildQueryURLs("Go Developer", []string{"not a url"}, nil)
	require.Error(t, err)
}
