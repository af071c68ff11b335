package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// defaultSession is the slot used by callers that do not identify themselves.
const defaultSession = "default"

// sessionID picks the last-record slot: the session query parameter, then
// the X-Session-ID header.
func sessionID(r *http.Request) string {
	if s := r.URL.Query().Get("session"); s != "" {
		return s
	}
	if s := r.Header.Get("X-Session-ID"); s != "" {
		return s
	}
	return defaultSession
}

// queryInt overwrites *dst with the integer query parameter key when present.
func queryInt(q url.Values, key string, dst *int) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer", key)
	}
	*dst = n
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, outcome string) {
	body := map[string]string{"error": msg}
	if outcome != "" {
		body["outcome"] = outcome
	}
	writeJSON(w, status, body)
}
