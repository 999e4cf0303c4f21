package scrape

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func respWith(status int, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{StatusCode: status, Header: h}
}

func TestDetectInterstitial(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
		body string
		want blockReason
	}{
		{
			name: "clean_page",
			resp: respWith(200, nil),
			body: "<html><body><p>Department of Computer Science</p></body></html>",
			want: blockNone,
		},
		{
			name: "cloudflare_403_with_ray",
			resp: respWith(403, map[string]string{"cf-ray": "8abc"}),
			body: "Access denied",
			want: blockChallenge,
		},
		{
			name: "cloudflare_503_server_header",
			resp: respWith(503, map[string]string{"server": "cloudflare"}),
			body: "Service temporarily unavailable",
			want: blockChallenge,
		},
		{
			name: "browser_check_body",
			resp: respWith(200, nil),
			body: "<html>Checking your browser before accessing</html>",
			want: blockChallenge,
		},
		{
			name: "recaptcha_body",
			resp: respWith(200, nil),
			body: `<div class="g-recaptcha" data-sitekey="x"></div>`,
			want: blockCaptcha,
		},
		{
			name: "maintenance_notice",
			resp: respWith(200, nil),
			body: "<html><body><h1>Site under maintenance</h1></body></html>",
			want: blockMaintenance,
		},
		{
			name: "portal_login_wall",
			resp: respWith(200, nil),
			body: "<html><body>Session expired. Please log in to continue.</body></html>",
			want: blockLoginWall,
		},
		{
			name: "script_shell",
			resp: respWith(200, nil),
			body: `<html><noscript>Please enable JavaScript</noscript></html>`,
			want: blockScriptShell,
		},
		{
			name: "meta_refresh_shell",
			resp: respWith(200, nil),
			body: `<html><head><meta http-equiv="refresh" content="0;url=/home"></head></html>`,
			want: blockScriptShell,
		},
		{
			name: "large_page_with_login_link_not_flagged",
			resp: respWith(200, nil),
			body: `<html><body><a href="/portal">Please log in to continue</a>` + strings.Repeat("<p>course content</p>", 200) + `</body></html>`,
			want: blockNone,
		},
		{
			name: "large_page_with_noscript_not_flagged",
			resp: respWith(200, nil),
			body: `<html><noscript>Enable javascript for maps</noscript>` + strings.Repeat("<p>course content</p>", 200) + `</html>`,
			want: blockNone,
		},
		{
			name: "plain_403_not_flagged",
			resp: respWith(403, nil),
			body: "Forbidden",
			want: blockNone,
		},
		{
			name: "nil_response",
			resp: nil,
			body: "",
			want: blockNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectInterstitial(tt.resp, []byte(tt.body)))
		})
	}
}
