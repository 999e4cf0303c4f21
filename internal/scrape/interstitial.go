package scrape

import (
	"net/http"
	"strings"
)

// blockReason classifies a response that carries an interstitial page
// instead of content. College sites on shared hosting tend to answer
// with challenge pages, maintenance notices or portal login walls where
// an API would return an error status.
type blockReason string

const (
	blockNone        blockReason = ""
	blockChallenge   blockReason = "challenge"
	blockCaptcha     blockReason = "captcha"
	blockMaintenance blockReason = "maintenance"
	blockLoginWall   blockReason = "login_wall"
	blockScriptShell blockReason = "script_shell"
)

// Markers matched anywhere in the body, regardless of size.
var (
	challengeMarkers = []string{
		"checking your browser",
		"cf-browser-verification",
		"just a moment...",
	}
	captchaMarkers = []string{
		"captcha",
		"recaptcha",
		"hcaptcha",
	}
)

// Markers only trusted on tiny bodies; words like "login" or
// "maintenance" appear on real content pages too.
const interstitialMaxBytes = 2048

var (
	maintenanceMarkers = []string{
		"site under maintenance",
		"scheduled maintenance",
		"under construction",
		"be back shortly",
	}
	loginWallMarkers = []string{
		"please log in to continue",
		"please login to continue",
		"session expired",
		"sign in to view this page",
	}
)

// detectInterstitial reports why a response should be treated as having
// no content, or blockNone for a real page.
func detectInterstitial(resp *http.Response, body []byte) blockReason {
	if resp == nil {
		return blockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if servedByCloudflare(resp.Header) {
			return blockChallenge
		}
	}

	lower := strings.ToLower(string(body))
	if containsAnyMarker(lower, challengeMarkers) ||
		(strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge")) {
		return blockChallenge
	}
	if containsAnyMarker(lower, captchaMarkers) {
		return blockCaptcha
	}

	if len(body) < interstitialMaxBytes {
		if containsAnyMarker(lower, maintenanceMarkers) {
			return blockMaintenance
		}
		if containsAnyMarker(lower, loginWallMarkers) {
			return blockLoginWall
		}
		// A shell that only tells browsers to run javascript or bounce
		// through a redirect.
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return blockScriptShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return blockScriptShell
		}
	}

	return blockNone
}

func servedByCloudflare(h http.Header) bool {
	return h.Get("cf-ray") != "" ||
		h.Get("cf-cache-status") != "" ||
		h.Get("server") == "cloudflare"
}

func containsAnyMarker(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
