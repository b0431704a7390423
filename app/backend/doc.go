// Package backend provides a client for the external compliance backend API.
//
// The client is deliberately single-shot: every call is one attempt with no retries,
// transport failures are classified as ErrTimeout or ErrUnreachable.
//
// Basic usage:
//
//	client, err := backend.New("https://api.example.com/v1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// forward a raw request with a bearer token
//	resp, err := client.Do(ctx, backend.Request{Method: http.MethodGet, Path: "/products", Token: token})
//
//	// typed helpers used by server-rendered pages
//	sess, err := client.Login(ctx, backend.Credentials{Email: "a@example.com", Password: "secret"})
//	user, err := client.Me(ctx, sess.Token)
package backend
