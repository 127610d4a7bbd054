package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/charmbracelet/log"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// updateRepo is the GitHub repository releases are fetched from.
const updateRepo = "Fepozopo/normalmap"

// githubAPI is the releases API base, replaced in tests.
var githubAPI = "https://api.github.com"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// detectLatestFallback queries the GitHub Releases API and returns the
// highest published, non-prerelease release whose tag or name carries a
// semantic version. It returns (nil, false, nil) when none qualifies.
func detectLatestFallback(ctx context.Context, repo string) (*selfupdate.Release, bool, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/releases", githubAPI, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, false, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
		Assets     []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	type candidate struct {
		ver      semver.Version
		assetURL string
	}
	var candidates []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
			if match == "" {
				continue
			}
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		// prefer an asset that looks like a platform binary, else the first
		assetURL := ""
		for _, a := range r.Assets {
			n := strings.ToLower(a.Name)
			if strings.Contains(n, "darwin") || strings.Contains(n, "linux") || strings.Contains(n, "windows") {
				assetURL = a.BrowserDownloadURL
				break
			}
			if assetURL == "" {
				assetURL = a.BrowserDownloadURL
			}
		}
		candidates = append(candidates, candidate{ver: v, assetURL: assetURL})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ver.GT(candidates[j].ver)
	})
	best := candidates[0]
	return &selfupdate.Release{Version: best.ver, AssetURL: best.assetURL}, true, nil
}

// updateDecision says what CheckForUpdates should do with a release.
type updateDecision int

const (
	updateNone updateDecision = iota
	updateCurrent
	updateNoAsset
	updateAvailable
)

func decideUpdate(current string, latest *selfupdate.Release) updateDecision {
	if latest == nil {
		return updateNone
	}
	cur, err := semver.Parse(strings.TrimPrefix(current, "v"))
	if err == nil && latest.Version.LTE(cur) {
		return updateCurrent
	}
	if latest.AssetURL == "" {
		return updateNoAsset
	}
	return updateAvailable
}

// CheckForUpdates compares the running version with the latest GitHub
// release and installs it over the current executable. confirm is asked
// before installing; a nil confirm installs without asking.
func CheckForUpdates(ctx context.Context, out io.Writer, logger *log.Logger, confirm func(prompt string) (bool, error)) error {
	fmt.Fprintf(out, "Current version: %s\n", version)
	latest, found, err := detectLatestFallback(ctx, updateRepo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found {
		fmt.Fprintf(out, "No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Fprintf(out, "Latest version: %s\n", latest.Version)
	if _, err := semver.Parse(strings.TrimPrefix(version, "v")); err != nil {
		logger.Warn("could not parse current version", "version", version, "err", err)
	}

	switch decideUpdate(version, latest) {
	case updateCurrent:
		fmt.Fprintf(out, "You are already running the latest version.\n")
		return nil
	case updateNoAsset:
		fmt.Fprintf(out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}

	if confirm != nil {
		ok, err := confirm(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
		if err != nil {
			return fmt.Errorf("failed reading input: %w", err)
		}
		if !ok {
			fmt.Fprintln(out, "Update cancelled.")
			return nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	p := newProgress(logger)
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	p.done(fmt.Sprintf("Updated to %s", latest.Version))
	fmt.Fprintln(out, "Restart normalmap to use the new version.")
	return nil
}

// isYes reports whether a prompt answer means yes.
func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// stdinConfirm asks on stdin.
func stdinConfirm(prompt string) (bool, error) {
	answer, err := PromptLine(prompt)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}
