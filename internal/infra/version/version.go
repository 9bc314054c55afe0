package version

import (
	"encoding/json"
	"net/http"
)

// Set at build time with -ldflags "-X flightroute/internal/infra/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildTime: BuildTime}
}

// String renders the one-line form printed by the CLI's -version flag.
func (i Info) String() string {
	return "flightroute " + i.Version + " (" + i.Commit + ", built " + i.BuildTime + ")"
}

// Handler writes version info as JSON.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Get())
}
