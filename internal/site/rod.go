package site

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodSession is a ScriptEvaluator backed by a headless Chromium driven by go-rod.
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// OpenRodSession launches a headless browser. It satisfies SessionOpener.
//
// go-rod downloads a managed Chromium on first use when none is installed.
func OpenRodSession(ctx context.Context) (ScriptEvaluator, error) {
	l := launcher.New().Headless(true).Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &RodSession{launcher: l, browser: browser}, nil
}

// Navigate opens url in a new tab and waits for its load event.
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	s.page = page
	return nil
}

// Evaluate runs expression on the current page.
func (s *RodSession) Evaluate(ctx context.Context, expression string) (string, error) {
	if s.page == nil {
		return "", errors.New("no page loaded")
	}
	obj, err := s.page.Context(ctx).Eval(expression)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}

// Close shuts the browser down and removes its profile directory.
func (s *RodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	return err
}
