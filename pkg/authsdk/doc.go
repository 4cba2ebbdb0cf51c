/*
Package authsdk is the Go client for the ShopKing authentication service,
and the home of the request, response and error types the service itself
writes.

# SDKClient vs Session

  - SDKClient: public operations (register, login, password reset, health)
  - Session: operations that need a bearer token

Login returns a Session:

	client := authsdk.NewSDKClient("https://auth.example.com")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "0400000000",
		Password: "correct horse battery staple",
	})

	session, err := client.Login(ctx, "alice@example.com", "correct horse battery staple")
	me, err := session.Me(ctx)

Sessions do not refresh. When the token expires or is revoked every call
fails with ErrInvalidToken and the caller logs in again.

# Password Reset

ForgotPassword always succeeds so the API cannot be used to probe which
emails are registered. The reset link is delivered out of band; the token
at the end of it is passed to ResetPassword:

	err := client.ForgotPassword(ctx, "alice@example.com")
	// ... user follows the emailed link ...
	err = client.ResetPassword(ctx, tokenFromLink, "new password")

# Errors

Failed calls return *APIError. Compare with the predefined values:

	_, err := client.Login(ctx, email, password)
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// wrong email or password
	}

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeInvalidInput {
		for field, msg := range apiErr.Fields {
			fmt.Println(field, msg)
		}
	}
*/
package authsdk
