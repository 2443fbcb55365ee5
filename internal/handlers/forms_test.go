package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/ibcoder/portfolio/internal/accounts"
	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/form"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormPages_RenderOneForm(t *testing.T) {
	env := setupHandlersTest(t)

	for _, m := range form.Modes {
		t.Run(string(m), func(t *testing.T) {
			rec := env.get(pathFor(m))
			require.Equal(t, http.StatusOK, rec.Code)

			doc := parse(t, rec.Body)
			forms := doc.Find("form[data-mode]")
			require.Equal(t, 1, forms.Length())
			assert.Equal(t, string(m), forms.AttrOr("data-mode", ""))
		})
	}
}

func TestSignupSubmit(t *testing.T) {
	t.Run("rejects providers outside the allow-list without a call", func(t *testing.T) {
		env := setupHandlersTest(t)

		rec := env.postForm("/auth/signup", signupValues("ada@example.com"))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		doc := parse(t, rec.Body)
		assert.Equal(t, form.ProviderError(), doc.Find("[data-error-for=email]").Text())
		assert.Equal(t, "ada", doc.Find("input[name=username]").AttrOr("value", ""))

		users, err := env.svc.ListUsers(context.Background())
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("reports field errors", func(t *testing.T) {
		env := setupHandlersTest(t)
		values := signupValues("ada@gmail.com")
		values.Set("confirmPassword", "something else")

		rec := env.postForm("/auth/signup", values)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		doc := parse(t, rec.Body)
		assert.Equal(t, "Passwords do not match", doc.Find("[data-error-for=confirmPassword]").Text())
	})

	t.Run("success switches to login with a toast", func(t *testing.T) {
		env := setupHandlersTest(t)

		rec := env.postForm("/auth/signup", signupValues("ada@gmail.com"))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))

		next := env.get("/auth/login", withCookies(rec.Result().Cookies()))
		doc := parse(t, next.Body)
		assert.Equal(t, 1, doc.Find("#toasts [data-toast-id="+form.ToastSignUpSuccess+"]").Length())
		assert.Equal(t, "login", doc.Find("form[data-mode]").AttrOr("data-mode", ""))
	})

	t.Run("htmx success swaps the panel to login", func(t *testing.T) {
		env := setupHandlersTest(t)

		rec := env.postForm("/auth/signup", signupValues("ada@gmail.com"), withHTMX())

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("HX-Push-Url"))
		doc := parse(t, rec.Body)
		assert.Equal(t, "login", doc.Find("form[data-mode]").AttrOr("data-mode", ""))
		assert.Equal(t, "true", doc.Find("#toasts").AttrOr("hx-swap-oob", ""))
		assert.Equal(t, 1, doc.Find("[data-toast-id="+form.ToastSignUpSuccess+"]").Length())
	})

	t.Run("duplicate account shows the server message", func(t *testing.T) {
		env := setupHandlersTest(t)
		env.postForm("/auth/signup", signupValues("ada@gmail.com"))

		rec := env.postForm("/auth/signup", signupValues("ada@gmail.com"))

		require.Equal(t, http.StatusOK, rec.Code)
		doc := parse(t, rec.Body)
		toast := doc.Find("[data-toast-id=" + form.ToastSignUpFailed + "]")
		require.Equal(t, 1, toast.Length())
		assert.NotEqual(t, form.MsgGenericFailure, toast.Text())
		assert.Equal(t, "signup", doc.Find("form[data-mode]").AttrOr("data-mode", ""))
	})
}

func TestLoginSubmit(t *testing.T) {
	env := setupHandlersTest(t)
	_, err := env.svc.SignUp(context.Background(), api.SignUpRequest{Username: "ada", Email: "ada@gmail.com", Password: "correct horse"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		rec := env.postForm("/auth/login", url.Values{"email": {"ada@gmail.com"}, "password": {"wrong password"}})

		require.Equal(t, http.StatusOK, rec.Code)
		doc := parse(t, rec.Body)
		assert.Equal(t, form.MsgInvalidCredentials, doc.Find("[data-toast-id="+form.ToastLoginError+"]").Text())
		_, has := doc.Find("input[name=password]").Attr("value")
		assert.False(t, has, "login form resets on failure")
	})

	t.Run("success opens a session and goes home", func(t *testing.T) {
		rec := env.postForm("/auth/login", url.Values{"email": {"ada@gmail.com"}, "password": {"correct horse"}})

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

		books := env.get("/books", withCookies(rec.Result().Cookies()))
		assert.Equal(t, http.StatusOK, books.Code)
		assert.Contains(t, books.Body.String(), "Welcome, ada.")
	})

	t.Run("htmx success uses HX-Redirect", func(t *testing.T) {
		rec := env.postForm("/auth/login", url.Values{"email": {"ada@gmail.com"}, "password": {"correct horse"}}, withHTMX())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	})
}

func TestContactSubmit(t *testing.T) {
	env := setupHandlersTest(t)
	values := url.Values{
		"name":    {"Grace"},
		"email":   {"grace@example.com"},
		"subject": {"Hello"},
		"message": {"Loved the <b>blog</b>"},
	}

	t.Run("empty field is rejected before any call", func(t *testing.T) {
		incomplete := url.Values{"name": {"Grace"}, "email": {"grace@example.com"}, "subject": {"Hello"}}
		rec := env.postForm("/contact", incomplete)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Message is required", parse(t, rec.Body).Find("[data-error-for=message]").Text())
	})

	t.Run("markup-only field counts as empty", func(t *testing.T) {
		v := url.Values{"name": {"<script>alert(1)</script>"}, "email": {"grace@example.com"}, "subject": {"Hi"}, "message": {"x"}}
		rec := env.postForm("/contact", v)

		doc := parse(t, rec.Body)
		assert.Equal(t, form.MsgContactIncomplete, doc.Find("[data-toast-id="+form.ToastContactFailed+"]").Text())
		assert.NotContains(t, rec.Body.String(), "<script>alert")
	})

	t.Run("repeated success keeps one toast per id", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := env.postForm("/contact", values, withHTMX())
			require.Equal(t, http.StatusOK, rec.Code)

			doc := parse(t, rec.Body)
			assert.Equal(t, 1, doc.Find("[data-toast-id="+form.ToastContactSuccess+"]").Length())
			assert.Equal(t, "Loved the blog", doc.Find("textarea[name=message]").Text(), "contact keeps its values on success")
		}
	})
}

func TestVerificationSubmit(t *testing.T) {
	env := setupHandlersTest(t)
	signup := env.postForm("/auth/signup", signupValues("ada@gmail.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)
	signupCookies := signup.Result().Cookies()

	var registered accounts.UserRegisteredEvent
	env.events.last(t, accounts.UserRegistered.Name(), &registered)
	code := registered.VerificationCode

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		rec := env.postForm("/auth/verify", url.Values{"verificationCode": {wrong}}, withCookies(signupCookies))

		doc := parse(t, rec.Body)
		assert.Equal(t, 1, doc.Find("[data-toast-id="+form.ToastVerificationFailed+"]").Length())
	})

	t.Run("valid code signs in and opens the books", func(t *testing.T) {
		rec := env.postForm("/auth/verify", url.Values{"verificationCode": {code}}, withCookies(signupCookies))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/books", rec.Header().Get(echo.HeaderLocation))

		books := env.get("/books", withCookies(rec.Result().Cookies()))
		assert.Equal(t, http.StatusOK, books.Code)
		assert.Equal(t, 1, parse(t, books.Body).Find("[data-toast-id="+form.ToastVerificationSuccess+"]").Length())
	})
}

func TestVerificationFromAnotherClient(t *testing.T) {
	env := setupHandlersTest(t)
	_, err := env.svc.SignUp(context.Background(), api.SignUpRequest{Username: "ada", Email: "ada@gmail.com", Password: "correct horse"})
	require.NoError(t, err)
	var registered accounts.UserRegisteredEvent
	env.events.last(t, accounts.UserRegistered.Name(), &registered)

	rec := env.postForm("/auth/verify", url.Values{"verificationCode": {registered.VerificationCode}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))

	books := env.get("/books", withCookies(rec.Result().Cookies()))
	assert.NotEqual(t, http.StatusOK, books.Code, "a code alone does not open a session")

	user, err := env.svc.FindUser(context.Background(), registered.UserID)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified, "the address is still verified")
}

func TestSwitch(t *testing.T) {
	env := setupHandlersTest(t)

	t.Run("allowed transition", func(t *testing.T) {
		rec := env.get("/auth/switch?from=login&to=forgotPassword", withHTMX())

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "forgotPassword", parse(t, rec.Body).Find("form[data-mode]").AttrOr("data-mode", ""))
	})

	t.Run("plain request falls back to navigation", func(t *testing.T) {
		rec := env.get("/auth/switch?from=signup&to=login")

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("refused transitions", func(t *testing.T) {
		for _, q := range []string{
			"from=loginVerification&to=login",
			"from=contact&to=signup",
			"from=forgotPassword&to=login",
			"from=login&to=nowhere",
		} {
			rec := env.get("/auth/switch?"+q, withHTMX())
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})
}

