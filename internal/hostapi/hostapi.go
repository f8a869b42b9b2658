// Package hostapi builds the capability bundle a plugin script can reach.
// Every function is a closure bound to one plugin's id and data directory;
// nothing here is shared between probes.
package hostapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
)

// GlobalName is the script global the capability bundle is bound to.
const GlobalName = "__openusage_ctx"

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// PluginsDataDir is the directory under the app data dir holding per-plugin data.
const PluginsDataDir = "plugins_data"

// Prelude installs script-side wrappers and helpers on the bundle. It must
// run after the bundle is bound and before the plugin script.
//
//go:embed prelude.js
var Prelude string

// Options configures a ProbeContext.
type Options struct {
	PluginID   string
	AppDataDir string
	AppVersion string
	// Platform defaults to runtime.GOOS.
	Platform string
	Logger   *logger.Logger
	// HTTPClient defaults to a non-pooled cleanhttp client.
	HTTPClient *http.Client
	// Keychain defaults to the system credential store.
	Keychain Keychain
	// Now defaults to time.Now.
	Now     func() time.Time
	Context context.Context
}

// AppInfo is the read-only app section of the bundle.
type AppInfo struct {
	Version       string
	Platform      string
	AppDataDir    string
	PluginDataDir string
}

// LogAPI forwards plugin messages to the host logger.
type LogAPI struct {
	Info  func(msg any)
	Warn  func(msg any)
	Error func(msg any)
}

// FSAPI is unjailed file access with home expansion.
type FSAPI struct {
	Exists    func(path string) bool
	ReadText  func(path string) (string, error)
	WriteText func(path, content string) error
}

// HTTPAPI exposes the raw JSON-in JSON-out request primitive.
type HTTPAPI struct {
	RequestRaw func(requestJSON string) (string, error)
}

// KeychainAPI reads generic passwords from the platform credential store.
type KeychainAPI struct {
	ReadGenericPassword func(service string) (string, error)
}

// SQLiteAPI runs read-only queries against local database files.
type SQLiteAPI struct {
	Query func(dbPath, sql string) (string, error)
}

// ProbeContext is the capability bundle for a single probe call.
type ProbeContext struct {
	PluginID string
	NowISO   string
	App      AppInfo
	Log      LogAPI
	FS       FSAPI
	HTTP     HTTPAPI
	Keychain KeychainAPI
	SQLite   SQLiteAPI
}

// New builds the bundle for one plugin. The plugin data directory is created
// here; a failure is logged and the path is still exposed.
func New(opts Options) *ProbeContext {
	if opts.Platform == "" {
		opts.Platform = runtime.GOOS
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient()
	}
	if opts.Keychain == nil {
		opts.Keychain = SystemKeychain{}
	}
	log := opts.Logger.WithPlugin(opts.PluginID)

	pluginDataDir := filepath.Join(opts.AppDataDir, PluginsDataDir, opts.PluginID)
	if err := os.MkdirAll(pluginDataDir, 0o755); err != nil {
		log.Error(err, fmt.Sprintf("failed to create plugin data dir %s", pluginDataDir))
	}

	return &ProbeContext{
		PluginID: opts.PluginID,
		NowISO:   opts.Now().UTC().Format(isoMillis),
		App: AppInfo{
			Version:       opts.AppVersion,
			Platform:      opts.Platform,
			AppDataDir:    opts.AppDataDir,
			PluginDataDir: pluginDataDir,
		},
		Log:      newLogAPI(log),
		FS:       newFSAPI(),
		HTTP:     newHTTPAPI(opts.Context, opts.HTTPClient),
		Keychain: newKeychainAPI(opts.Platform, opts.Keychain),
		SQLite:   newSQLiteAPI(opts.Context),
	}
}

// Globals renders the bundle as the nested tree bound under GlobalName.
func (c *ProbeContext) Globals() map[string]any {
	return map[string]any{
		"nowIso": c.NowISO,
		"app": map[string]any{
			"version":       c.App.Version,
			"platform":      c.App.Platform,
			"appDataDir":    c.App.AppDataDir,
			"pluginDataDir": c.App.PluginDataDir,
		},
		"host": map[string]any{
			"log": map[string]any{
				"info":  c.Log.Info,
				"warn":  c.Log.Warn,
				"error": c.Log.Error,
			},
			"fs": map[string]any{
				"exists":    c.FS.Exists,
				"readText":  c.FS.ReadText,
				"writeText": c.FS.WriteText,
			},
			"http": map[string]any{
				"_requestRaw": c.HTTP.RequestRaw,
			},
			"keychain": map[string]any{
				"readGenericPassword": c.Keychain.ReadGenericPassword,
			},
			"sqlite": map[string]any{
				"query": c.SQLite.Query,
			},
		},
		"jwt": map[string]any{
			"_payloadJson": DecodeJWTPayload,
		},
	}
}

func newLogAPI(log *logger.Logger) LogAPI {
	return LogAPI{
		Info:  func(msg any) { log.Info(stringify(msg)) },
		Warn:  func(msg any) { log.Warn(stringify(msg)) },
		Error: func(msg any) { log.Error(nil, stringify(msg)) },
	}
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	}
	if raw, err := json.Marshal(v); err == nil {
		return string(raw)
	}
	return fmt.Sprint(v)
}
