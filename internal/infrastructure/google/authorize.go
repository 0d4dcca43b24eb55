package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// Authorize runs the installed-app consent flow: it prints the consent URL,
// waits for Google to redirect back to a loopback listener and stores the
// resulting token in tokenFile.
func Authorize(ctx context.Context, log *slog.Logger, out io.Writer, credentialsFile, tokenFile string) error {
	cfg, err := LoadConfig(credentialsFile)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen for the oauth redirect: %w", err)
	}

	cfg.RedirectURL = "http://" + listener.Addr().String() + "/"

	state, err := randomState()
	if err != nil {
		return err
	}

	codes := make(chan string, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, codes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(out, "Open this URL in your browser and grant access:\n\n%s\n\n",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve oauth redirect: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer srv.Close() //nolint:errcheck

		var code string
		select {
		case code = <-codes:
		case <-gCtx.Done():
			return gCtx.Err()
		}

		token, err := cfg.Exchange(gCtx, code)
		if err != nil {
			return fmt.Errorf("failed to exchange authorization code: %w", err)
		}

		if err := SaveToken(tokenFile, token); err != nil {
			return err
		}

		log.InfoContext(gCtx, "token stored", slog.String("path", tokenFile))
		return nil
	})

	return g.Wait()
}

func callbackHandler(state string, codes chan<- string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, "authorization denied: "+q.Get("error"), http.StatusBadRequest)
			return
		}

		select {
		case codes <- code:
			fmt.Fprintln(w, "Authorization complete, you can close this window.")
		default:
			http.Error(w, "authorization already completed", http.StatusConflict)
		}
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
