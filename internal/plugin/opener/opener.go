// Package opener hands URLs to the desktop's default handler.
package opener

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"zettel/internal/logger"
)

const PluginName = "opener"

var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrSchemeNotAllowed = errors.New("url scheme not allowed")
)

// URLOpener is satisfied by fyne.App.
type URLOpener interface {
	OpenURL(u *url.URL) error
}

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

type Plugin struct {
	host   URLOpener
	logger logger.Logger
}

func New(host URLOpener, log logger.Logger) *Plugin {
	return &Plugin{host: host, logger: log}
}

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Init(context.Context) error {
	if p.host == nil {
		return errors.New("opener requires a host")
	}
	return nil
}

func (p *Plugin) Close() error { return nil }

func Parse(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidURL, err.Error())
	}
	if u.Scheme == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "%q has no scheme", raw)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return nil, errors.Wrap(ErrSchemeNotAllowed, u.Scheme)
	}
	if u.Scheme != "mailto" && u.Host == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "%q has no host", raw)
	}
	return u, nil
}

func (p *Plugin) OpenURL(raw string) error {
	u, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := p.host.OpenURL(u); err != nil {
		return errors.Wrapf(err, "open %s", u.Redacted())
	}
	p.logger.Info("Opener", "url opened", map[string]interface{}{"url": u.Redacted()})
	return nil
}
