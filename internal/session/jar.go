package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/repositories"
	"golang.org/x/net/publicsuffix"
)

var _ http.CookieJar = (*Jar)(nil)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Jar is an [http.CookieJar] whose cookies for the backend are mirrored to the profile on every change.
type Jar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	kv     KV
	base   *url.URL
	key    string
	logger *log.Logger
}

// NewJar creates a jar for the backend at baseURL and restores its persisted cookies.
func NewJar(kv KV, baseURL string, logger *log.Logger) (*Jar, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	if logger == nil {
		logger = log.Default()
	}

	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}

	j := &Jar{jar: jar, kv: kv, base: base, key: "cookies:" + base.Host, logger: logger}
	j.restore()
	return j, nil
}

func newCookieJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// SetCookies implements [http.CookieJar].
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
	if u.Host == j.base.Host {
		j.persist()
	}
}

// Cookies implements [http.CookieJar].
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Reset drops every cookie, in memory and in the profile.
func (j *Jar) Reset() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	jar, err := newCookieJar()
	if err != nil {
		return err
	}
	j.jar = jar
	if err := j.kv.Delete(j.key); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

func (j *Jar) persist() {
	cookies := j.jar.Cookies(j.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		j.logger.Warn("failed to encode cookies", "error", err)
		return
	}
	if err := j.kv.Put(j.key, string(data)); err != nil {
		j.logger.Warn("failed to persist cookies", "error", err)
	}
}

func (j *Jar) restore() {
	raw, err := j.kv.Get(j.key)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return
	}
	if err != nil {
		j.logger.Warn("cookie storage unavailable", "error", err)
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		j.logger.Warn("discarding corrupt cookies", "error", err)
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	j.jar.SetCookies(j.base, cookies)
}
