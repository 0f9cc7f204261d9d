package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// ReleasesURL is the latest-release endpoint of the project
	ReleasesURL  = "https://api.github.com/repos/nztinversive/NASA-data-analyst-llm/releases/latest"
	checkTimeout = 5 * time.Second
)

// Current is the running version, overridden at link time
var Current = "0.1.0"

// Update describes the newest published release
type Update struct {
	Latest    string
	URL       string
	Available bool // Latest is newer than the running version
}

// Checker looks up the latest release
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a checker for the project's release feed
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Check fetches the latest release and compares it with current
func (c *Checker) Check(ctx context.Context, current string) (Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Update{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "analyst/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Update{}, fmt.Errorf("failed to read response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return Update{}, fmt.Errorf("failed to decode response")
	}

	release := gjson.ParseBytes(body)
	update := Update{
		Latest: strings.TrimPrefix(release.Get("tag_name").String(), "v"),
		URL:    release.Get("html_url").String(),
	}
	update.Available = update.Latest != "" && Compare(update.Latest, strings.TrimPrefix(current, "v")) > 0
	return update, nil
}

// Compare orders two dotted versions numerically: -1, 0 or 1.
// Pre-release and build suffixes are ignored; missing parts count as 0.
func Compare(a, b string) int {
	ap := parseVersion(a)
	bp := parseVersion(b)

	n := len(ap)
	if len(bp) > n {
		n = len(bp)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(ap) {
			x = ap[i]
		}
		if i < len(bp) {
			y = bp[i]
		}
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return 0
}

func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	parts := strings.Split(strings.TrimPrefix(version, "v"), ".")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, num)
	}
	return result
}
