package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazantsevivan2813-art/kogscrape/internal/browser"
	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/kognityapi"
	"github.com/kazantsevivan2813-art/kogscrape/internal/navigator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/session"
	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// apiClient builds the REST client from the saved cookie session. When no
// usable session exists it logs in through the browser once, persists the
// cookies, and closes the browser again; API commands themselves never
// keep a browser open.
func apiClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*kognityapi.Client, error) {
	store := session.NewStore(cfg.Auth.CookieFile, cfg.Auth.CookieExpiry, logger)
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}

	if sess == nil {
		if err := config.ValidateCredentials(cfg); err != nil {
			return nil, fmt.Errorf("no saved session and login impossible: %w", err)
		}
		logger.Info("no usable session, logging in through the browser")

		b, err := browser.Launch(cfg.Browser, logger)
		if err != nil {
			return nil, err
		}
		defer b.Close()

		nav := navigator.New(b, buildLocator(cfg, logger), store, cfg, logger)
		if _, err := nav.EnsureAuthenticated(ctx); err != nil {
			return nil, err
		}

		sess, err = store.Load()
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, fmt.Errorf("login produced no usable session: %w", types.ErrAuth)
		}
	}

	return kognityapi.New(cfg.Site.BaseURL, sess.CookieMap(), cfg.API, logger), nil
}
