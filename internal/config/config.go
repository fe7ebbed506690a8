package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	downloadDir = "downloads"

	indexerKind   = "torznab" // torznab|json
	indexerURL    = "http://localhost:9696"
	indexerAPIKey string
	indexerPath   = "/api/v1/indexers/all/results/torznab/api"

	httpTimeout = 30 * time.Second
	userAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	solverURL     string // FlareSolverr-compatible endpoint, empty = off
	solverTimeout = 60 * time.Second

	trackersMode     = "all" // all|http|udp|none
	listenPort       int
	progressInterval = 2 * time.Second

	stateDSN       string
	searchCacheTTL time.Duration
	historyKeep    = 200

	updateCheck         = true
	updateCheckInterval = 24 * time.Hour
	updateRepo          = "sayem314/torrenter"

	noBanner bool
	verbose  bool

	// logging
	logFilePath   string
	logAllowRegex = `^\[(init|search|resolve|bypass|download|store|update|pipeline|janitor)\]`
	logDenyRegex  = `FlushFileBuffers|fsync|WriteFile|The handle is invalid|Access is denied|Permission denied`
	logDedupWin   = 3 * time.Second
)

func Load() {
	downloadDir = getenv("DOWNLOAD_DIR", downloadDir)

	indexerKind = strings.ToLower(getenv("INDEXER_KIND", indexerKind))
	indexerURL = getenv("INDEXER_URL", indexerURL)
	indexerAPIKey = getenv("INDEXER_API_KEY", indexerAPIKey)
	indexerPath = getenv("INDEXER_PATH", indexerPath)

	httpTimeout = getenvDuration("HTTP_TIMEOUT", httpTimeout)
	userAgent = getenv("USER_AGENT", userAgent)
	solverURL = getenv("SOLVER_URL", solverURL)
	solverTimeout = getenvDuration("SOLVER_TIMEOUT", solverTimeout)

	trackersMode = strings.ToLower(getenv("TRACKERS_MODE", trackersMode))
	listenPort = int(getenvInt64("TORRENT_LISTEN_PORT", int64(listenPort)))
	progressInterval = getenvDuration("PROGRESS_INTERVAL", progressInterval)

	stateDSN = getenv("STATE_DSN", defaultStateDSN())
	searchCacheTTL = getenvDuration("SEARCH_CACHE_TTL", searchCacheTTL)
	historyKeep = int(getenvInt64("HISTORY_KEEP", int64(historyKeep)))

	updateCheck = strings.ToLower(getenv("UPDATE_CHECK", "true")) != "false"
	updateCheckInterval = getenvDuration("UPDATE_CHECK_INTERVAL", updateCheckInterval)
	updateRepo = getenv("UPDATE_REPO", updateRepo)

	noBanner = strings.ToLower(getenv("NO_BANNER", "false")) == "true"

	logFilePath = getenv("LOG_FILE", logFilePath)
	logAllowRegex = getenv("LOG_ALLOW", logAllowRegex)
	logDenyRegex = getenv("LOG_DENY", logDenyRegex)
	logDedupWin = getenvDuration("LOG_DEDUP_WINDOW", logDedupWin)
}

func defaultStateDSN() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "off"
	}
	return filepath.Join(dir, "torrenter", "state.db")
}

// getters
func DownloadDir() string                { return downloadDir }
func IndexerKind() string                { return indexerKind }
func IndexerURL() string                 { return indexerURL }
func IndexerAPIKey() string              { return indexerAPIKey }
func IndexerPath() string                { return indexerPath }
func HTTPTimeout() time.Duration         { return httpTimeout }
func UserAgent() string                  { return userAgent }
func SolverURL() string                  { return solverURL }
func SolverTimeout() time.Duration       { return solverTimeout }
func TrackersMode() string               { return trackersMode }
func ListenPort() int                    { return listenPort }
func ProgressInterval() time.Duration    { return progressInterval }
func StateDSN() string                   { return stateDSN }
func SearchCacheTTL() time.Duration      { return searchCacheTTL }
func HistoryKeep() int                   { return historyKeep }
func UpdateCheck() bool                  { return updateCheck }
func UpdateCheckInterval() time.Duration { return updateCheckInterval }
func UpdateRepo() string                 { return updateRepo }
func NoBanner() bool                     { return noBanner }
func Verbose() bool                      { return verbose }
func LogFilePath() string                { return logFilePath }
func LogAllowRegex() string              { return logAllowRegex }
func LogDenyRegex() string               { return logDenyRegex }
func LogDedupWindow() time.Duration      { return logDedupWin }

// CLI flag overrides, applied after Load.
func SetDownloadDir(v string) {
	if v != "" {
		downloadDir = v
	}
}
func SetNoBanner(v bool)  { noBanner = noBanner || v }
func SetVerbose(v bool)   { verbose = v }
func DisableUpdateCheck() { updateCheck = false }

// helpers
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func getenvInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
