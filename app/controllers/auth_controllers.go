package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/requests"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

type AuthController struct {
	service       *services.AuthService
	secureCookies bool
}

// NewAuthController builds the register/login/logout handlers. secure sets
// the Secure attribute on the session cookie.
func NewAuthController(service *services.AuthService, secure bool) *AuthController {
	return &AuthController{service: service, secureCookies: secure}
}

func (c *AuthController) Register(cx *ctx.Context) {
	var in requests.Register
	if !cx.BindJSON(&in) {
		return
	}

	user, token, err := c.service.Register(cx.Context(), in)
	if err != nil {
		cx.Fail(err)
		return
	}

	cx.SetCookie(auth.NewCookie(token, c.secureCookies))
	cx.Message(http.StatusCreated, "Registration successful", response.Body{"user": user})
}

func (c *AuthController) Login(cx *ctx.Context) {
	var in requests.Login
	if !cx.BindJSON(&in) {
		return
	}

	user, token, err := c.service.Login(cx.Context(), in)
	if err != nil {
		cx.Fail(err)
		return
	}

	cx.SetCookie(auth.NewCookie(token, c.secureCookies))
	cx.Message(http.StatusOK, "Login successful", response.Body{"user": user})
}

// Logout clears the session cookie. The token itself stays valid until it
// expires.
func (c *AuthController) Logout(cx *ctx.Context) {
	cx.SetCookie(auth.ClearCookie(c.secureCookies))
	cx.Message(http.StatusOK, "Logout successful", nil)
}
