// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package telegram is the server half of the Mini App integration: it
// validates the initData string the WebApp hands to the client and sends
// bot messages to users.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInitData is returned when initData is malformed, unsigned,
// wrongly signed or too old.
var ErrInvalidInitData = errors.New("invalid telegram init data")

// WebAppUser is the "user" object embedded in initData.
type WebAppUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// InitData is the validated content of a WebApp launch.
type InitData struct {
	User         WebAppUser
	AuthDate     time.Time
	QueryID      string
	StartParam   string
	ChatType     string
	ChatInstance string
}

// Validator checks initData signatures for one bot.
type Validator struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewValidator returns a Validator for botToken. initData older than maxAge
// is rejected; a zero maxAge disables the age check.
func NewValidator(botToken string, maxAge time.Duration) *Validator {
	return &Validator{
		secret: secretKey(botToken),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// secretKey derives the WebApp signing key: HMAC-SHA256 of the bot token
// keyed with the constant "WebAppData".
func secretKey(botToken string) []byte {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

// dataCheckString joins every field except hash as sorted key=value lines.
func dataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + values.Get(k)
	}
	return strings.Join(lines, "\n")
}

func sign(secret []byte, data string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate verifies raw initData and returns its parsed content.
func (v *Validator) Validate(raw string) (*InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInitData, err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, fmt.Errorf("%w: missing hash", ErrInvalidInitData)
	}
	want := sign(v.secret, dataCheckString(values))
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(hash))) {
		return nil, fmt.Errorf("%w: hash mismatch", ErrInvalidInitData)
	}

	ts, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad auth_date", ErrInvalidInitData)
	}
	authDate := time.Unix(ts, 0)
	if v.maxAge > 0 && v.now().Sub(authDate) > v.maxAge {
		return nil, fmt.Errorf("%w: expired", ErrInvalidInitData)
	}

	var user WebAppUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, fmt.Errorf("%w: bad user: %w", ErrInvalidInitData, err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidInitData)
	}

	return &InitData{
		User:         user,
		AuthDate:     authDate,
		QueryID:      values.Get("query_id"),
		StartParam:   values.Get("start_param"),
		ChatType:     values.Get("chat_type"),
		ChatInstance: values.Get("chat_instance"),
	}, nil
}

// Sign builds a signed initData string for user. It is what Telegram does
// on launch and is used by tests and local tooling.
func Sign(botToken string, user WebAppUser, authDate time.Time, extra url.Values) (string, error) {
	u, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal user: %w", err)
	}
	values := url.Values{}
	for k, vs := range extra {
		values[k] = vs
	}
	values.Set("user", string(u))
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("hash", sign(secretKey(botToken), dataCheckString(values)))
	return values.Encode(), nil
}
