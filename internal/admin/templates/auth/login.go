package auth

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/akira3175/fashionshop/internal/admin/templates/helpers"
	"github.com/akira3175/fashionshop/internal/admin/templates/layout"
)

// LoginPageData is the payload for the staff login page.
type LoginPageData struct {
	LoginPath string
	Next      string
	Error     string
	Message   string
	CSRFToken string
}

// LoginPage renders the login form. The ID token field is filled by the Firebase
// client SDK in production and typed by hand against the development authenticator.
func LoginPage(data LoginPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := helpers.NewWriter(w)
		hw.Raw(`<section class="login"><h1>Đăng nhập quản trị</h1>`)
		if data.Message != "" {
			hw.Raw(`<p class="notice notice-info">`)
			hw.Text(data.Message)
			hw.Raw(`</p>`)
		}
		if data.Error != "" {
			hw.Raw(`<p class="notice notice-danger login-error">`)
			hw.Text(data.Error)
			hw.Raw(`</p>`)
		}
		hw.Raw(`<form method="post"`)
		hw.Attr("action", data.LoginPath)
		hw.Raw(`><input type="hidden" name="csrf_token"`)
		hw.Attr("value", data.CSRFToken)
		hw.Raw(`><input type="hidden" name="next"`)
		hw.Attr("value", data.Next)
		hw.Raw(`><label>ID token <input type="password" name="id_token" autocomplete="off" required></label>`)
		hw.Raw(`<button type="submit">Đăng nhập</button></form></section>`)
		return hw.Err()
	})
	return layout.Page(layout.Chrome{Title: "Đăng nhập", CSRFToken: data.CSRFToken}, body)
}
