package config

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Values holds scalar configuration values.
// Fields ending in *Set (e.g., HeadlessSet) track whether that field was explicitly
// set in config. This allows distinguishing explicit false/0 from "not set", enabling
// proper merge behavior where local config can override global config with zero values.
type Values struct {
	BaseURL          string
	AuthenticatedURL string
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	MarkerSelector   string
	ErrorSelector    string

	Engine            string
	Headless          bool
	HeadlessSet       bool // tracks if headless was explicitly set
	SlowMoMs          int
	SlowMoMsSet       bool
	ActionTimeoutMs   int
	ActionTimeoutSet  bool
	ObserveTimeoutMs  int
	ObserveTimeoutSet bool
	CaseTimeoutMs     int
	CaseTimeoutSet    bool
	Parallel          int
	ParallelSet       bool
	Repeat            int
	RepeatSet         bool

	CasesFile  string
	ReportFile string
	HistoryDSN string

	NotifyChannels        []string
	NotifyOnError         bool
	NotifyOnErrorSet      bool
	NotifyOnComplete      bool
	NotifyOnCompleteSet   bool
	NotifyTimeoutMs       int
	NotifyTelegramToken   string
	NotifyTelegramChat    string
	NotifySlackToken      string
	NotifySlackChannel    string
	NotifySMTPHost        string
	NotifySMTPPort        int
	NotifySMTPUsername    string
	NotifySMTPPassword    string
	NotifySMTPStartTLS    bool
	NotifySMTPStartTLSSet bool
	NotifyEmailFrom       string
	NotifyEmailTo         []string
	NotifyWebhookURLs     []string
	NotifyCustomScript    string
}

// valuesLoader loads Values with embedded filesystem fallback.
type valuesLoader struct {
	embedFS embed.FS
}

// newValuesLoader creates a new valuesLoader with the given embedded filesystem.
func newValuesLoader(embedFS embed.FS) *valuesLoader {
	return &valuesLoader{embedFS: embedFS}
}

// Load merges embedded, global and local values, later layers win.
// only keys present in a layer override, so a file of comments changes nothing.
func (vl *valuesLoader) Load(localConfigPath, globalConfigPath string) (Values, error) {
	layers, err := readLayers(vl.embedFS, globalConfigPath, localConfigPath)
	if err != nil {
		return Values{}, err
	}
	var res Values
	for _, l := range layers {
		v, err := vl.parseValuesFromBytes(l.data)
		if err != nil {
			return Values{}, fmt.Errorf("%s: %w", l.name, err)
		}
		res.mergeFrom(&v)
	}
	return res, nil
}

// parseValuesFromBytes parses configuration from a byte slice into Values.
func (vl *valuesLoader) parseValuesFromBytes(data []byte) (Values, error) {
	// ignoreInlineComment: true keeps # in css selectors like #user-name
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Values{}, fmt.Errorf("parse config: %w", err)
	}

	var values Values
	section := cfg.Section("") // default section (no section header)

	// plain strings, empty values are treated as unset
	stringKeys := []struct {
		key   string
		field *string
	}{
		{"base_url", &values.BaseURL},
		{"authenticated_url", &values.AuthenticatedURL},
		{"username_selector", &values.UsernameSelector},
		{"password_selector", &values.PasswordSelector},
		{"submit_selector", &values.SubmitSelector},
		{"marker_selector", &values.MarkerSelector},
		{"error_selector", &values.ErrorSelector},
		{"engine", &values.Engine},
		{"cases_file", &values.CasesFile},
		{"report_file", &values.ReportFile},
		{"history_dsn", &values.HistoryDSN},
		{"notify_telegram_token", &values.NotifyTelegramToken},
		{"notify_telegram_chat", &values.NotifyTelegramChat},
		{"notify_slack_token", &values.NotifySlackToken},
		{"notify_slack_channel", &values.NotifySlackChannel},
		{"notify_smtp_host", &values.NotifySMTPHost},
		{"notify_smtp_username", &values.NotifySMTPUsername},
		{"notify_smtp_password", &values.NotifySMTPPassword},
		{"notify_email_from", &values.NotifyEmailFrom},
		{"notify_custom_script", &values.NotifyCustomScript},
	}
	for _, sk := range stringKeys {
		if key, err := section.GetKey(sk.key); err == nil {
			*sk.field = strings.TrimSpace(key.String())
		}
	}

	// non-negative integers with explicit-set tracking
	intKeys := []struct {
		key   string
		field *int
		set   *bool
	}{
		{"slow_mo_ms", &values.SlowMoMs, &values.SlowMoMsSet},
		{"action_timeout_ms", &values.ActionTimeoutMs, &values.ActionTimeoutSet},
		{"observe_timeout_ms", &values.ObserveTimeoutMs, &values.ObserveTimeoutSet},
		{"case_timeout_ms", &values.CaseTimeoutMs, &values.CaseTimeoutSet},
		{"parallel", &values.Parallel, &values.ParallelSet},
		{"repeat", &values.Repeat, &values.RepeatSet},
		{"notify_timeout_ms", &values.NotifyTimeoutMs, nil},
		{"notify_smtp_port", &values.NotifySMTPPort, nil},
	}
	for _, ik := range intKeys {
		key, err := section.GetKey(ik.key)
		if err != nil || strings.TrimSpace(key.String()) == "" {
			continue
		}
		val, intErr := key.Int()
		if intErr != nil {
			return Values{}, fmt.Errorf("invalid %s: %w", ik.key, intErr)
		}
		if val < 0 {
			return Values{}, fmt.Errorf("invalid %s: must be non-negative, got %d", ik.key, val)
		}
		*ik.field = val
		if ik.set != nil {
			*ik.set = true
		}
	}

	boolKeys := []struct {
		key   string
		field *bool
		set   *bool
	}{
		{"headless", &values.Headless, &values.HeadlessSet},
		{"notify_on_error", &values.NotifyOnError, &values.NotifyOnErrorSet},
		{"notify_on_complete", &values.NotifyOnComplete, &values.NotifyOnCompleteSet},
		{"notify_smtp_starttls", &values.NotifySMTPStartTLS, &values.NotifySMTPStartTLSSet},
	}
	for _, bk := range boolKeys {
		key, err := section.GetKey(bk.key)
		if err != nil || strings.TrimSpace(key.String()) == "" {
			continue
		}
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Values{}, fmt.Errorf("invalid %s: %w", bk.key, boolErr)
		}
		*bk.field = val
		*bk.set = true
	}

	// comma-separated lists
	listKeys := []struct {
		key   string
		field *[]string
	}{
		{"notify_channels", &values.NotifyChannels},
		{"notify_email_to", &values.NotifyEmailTo},
		{"notify_webhook_urls", &values.NotifyWebhookURLs},
	}
	for _, lk := range listKeys {
		if key, err := section.GetKey(lk.key); err == nil {
			*lk.field = splitList(key.String())
		}
	}

	return values, nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(val string) []string {
	var res []string
	for p := range strings.SplitSeq(strings.TrimSpace(val), ",") {
		if t := strings.TrimSpace(p); t != "" {
			res = append(res, t)
		}
	}
	return res
}

// mergeFrom merges non-empty values from src into dst.
//
//nolint:gocyclo // flat field-by-field merge reads better than reflection
func (dst *Values) mergeFrom(src *Values) {
	mergeString := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	mergeString(&dst.BaseURL, src.BaseURL)
	mergeString(&dst.AuthenticatedURL, src.AuthenticatedURL)
	mergeString(&dst.UsernameSelector, src.UsernameSelector)
	mergeString(&dst.PasswordSelector, src.PasswordSelector)
	mergeString(&dst.SubmitSelector, src.SubmitSelector)
	mergeString(&dst.MarkerSelector, src.MarkerSelector)
	mergeString(&dst.ErrorSelector, src.ErrorSelector)
	mergeString(&dst.Engine, src.Engine)
	mergeString(&dst.CasesFile, src.CasesFile)
	mergeString(&dst.ReportFile, src.ReportFile)
	mergeString(&dst.HistoryDSN, src.HistoryDSN)
	mergeString(&dst.NotifyTelegramToken, src.NotifyTelegramToken)
	mergeString(&dst.NotifyTelegramChat, src.NotifyTelegramChat)
	mergeString(&dst.NotifySlackToken, src.NotifySlackToken)
	mergeString(&dst.NotifySlackChannel, src.NotifySlackChannel)
	mergeString(&dst.NotifySMTPHost, src.NotifySMTPHost)
	mergeString(&dst.NotifySMTPUsername, src.NotifySMTPUsername)
	mergeString(&dst.NotifySMTPPassword, src.NotifySMTPPassword)
	mergeString(&dst.NotifyEmailFrom, src.NotifyEmailFrom)
	mergeString(&dst.NotifyCustomScript, src.NotifyCustomScript)

	if src.HeadlessSet {
		dst.Headless = src.Headless
		dst.HeadlessSet = true
	}
	if src.SlowMoMsSet {
		dst.SlowMoMs = src.SlowMoMs
		dst.SlowMoMsSet = true
	}
	if src.ActionTimeoutSet {
		dst.ActionTimeoutMs = src.ActionTimeoutMs
		dst.ActionTimeoutSet = true
	}
	if src.ObserveTimeoutSet {
		dst.ObserveTimeoutMs = src.ObserveTimeoutMs
		dst.ObserveTimeoutSet = true
	}
	if src.CaseTimeoutSet {
		dst.CaseTimeoutMs = src.CaseTimeoutMs
		dst.CaseTimeoutSet = true
	}
	if src.ParallelSet {
		dst.Parallel = src.Parallel
		dst.ParallelSet = true
	}
	if src.RepeatSet {
		dst.Repeat = src.Repeat
		dst.RepeatSet = true
	}

	if len(src.NotifyChannels) > 0 {
		dst.NotifyChannels = src.NotifyChannels
	}
	if src.NotifyOnErrorSet {
		dst.NotifyOnError = src.NotifyOnError
		dst.NotifyOnErrorSet = true
	}
	if src.NotifyOnCompleteSet {
		dst.NotifyOnComplete = src.NotifyOnComplete
		dst.NotifyOnCompleteSet = true
	}
	if src.NotifyTimeoutMs > 0 {
		dst.NotifyTimeoutMs = src.NotifyTimeoutMs
	}
	if src.NotifySMTPPort > 0 {
		dst.NotifySMTPPort = src.NotifySMTPPort
	}
	if src.NotifySMTPStartTLSSet {
		dst.NotifySMTPStartTLS = src.NotifySMTPStartTLS
		dst.NotifySMTPStartTLSSet = true
	}
	if len(src.NotifyEmailTo) > 0 {
		dst.NotifyEmailTo = src.NotifyEmailTo
	}
	if len(src.NotifyWebhookURLs) > 0 {
		dst.NotifyWebhookURLs = src.NotifyWebhookURLs
	}
}
