/*
Package blogsdk is a client for the blog API and the home of its wire types.

# SDKClient vs Session

SDKClient covers the endpoints that need no session:

	client := blogsdk.NewSDKClient("https://blog.example.com")

	health, err := client.GetReadiness(ctx)
	user, err := client.Signup(ctx, blogsdk.SignupRequest{Username: "mahdi", Password: "12345678"})

Login returns a Session. A fresh Session only holds a refresh token and a
CSRF token; it becomes usable for the rest of the API once the second factor
has been checked and the tokens rotated:

	sess, err := client.Login(ctx, "mahdi", "12345678")
	err = sess.Verify(ctx, totpCode)
	_, err = sess.Refresh(ctx)

	me, err := sess.Me(ctx)

Every Refresh replaces the refresh, access and CSRF tokens. The previous
refresh token stops working immediately, so a Session must not be shared by
callers that refresh independently.

# Errors

Server side failures are returned as *APIError carrying the HTTP status and
the stable error code:

	if blogsdk.IsCode(err, blogsdk.ErrorCodeInvalidCredentials) {
		// log in again
	}
*/
package blogsdk
