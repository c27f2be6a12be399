package layout

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"

	"github.com/akira3175/fashionshop/internal/admin/templates/helpers"
)

// Chrome carries the page-level data shared by every admin page.
type Chrome struct {
	Title       string
	BasePath    string
	CSRFToken   string
	StaffEmail  string
	Environment string
	LogoutURL   string
}

// Page wraps body in the admin document shell. The CSRF token is sent by htmx
// on every request through hx-headers.
func Page(chrome Chrome, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		headers, err := json.Marshal(map[string]string{"X-CSRF-Token": chrome.CSRFToken})
		if err != nil {
			return err
		}
		hw := helpers.NewWriter(w)
		hw.Raw(`<!DOCTYPE html><html lang="vi"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw(`<title>`)
		hw.Text(chrome.Title)
		hw.Raw(` | Fashion Shop Admin</title>`)
		hw.Raw(`<script src="https://unpkg.com/htmx.org@1.9.12" defer></script></head>`)
		hw.Raw(`<body`)
		hw.Attr("hx-headers", string(headers))
		hw.Raw(`><header class="admin-topbar"><span class="brand">Fashion Shop Admin</span>`)
		if chrome.Environment != "" {
			hw.Raw(`<span class="env-badge">`)
			hw.Text(chrome.Environment)
			hw.Raw(`</span>`)
		}
		if chrome.StaffEmail != "" {
			hw.Raw(`<span class="staff">`)
			hw.Text(chrome.StaffEmail)
			hw.Raw(`</span>`)
		}
		if chrome.LogoutURL != "" {
			hw.Raw(`<form method="post"`)
			hw.Attr("action", chrome.LogoutURL)
			hw.Raw(`><input type="hidden" name="csrf_token"`)
			hw.Attr("value", chrome.CSRFToken)
			hw.Raw(`><button type="submit" class="btn-link">Đăng xuất</button></form>`)
		}
		hw.Raw(`</header><main class="admin-main">`)
		hw.Component(ctx, body)
		hw.Raw(`</main></body></html>`)
		return hw.Err()
	})
}
