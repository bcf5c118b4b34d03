package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/finpulse/internal/fallback"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// maxSymbolLen bounds the {symbol} path variable
const maxSymbolLen = 15

// symbolVar reads and normalizes {symbol}; ok is false after a 400 was written
func symbolVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := fallback.Normalize(mux.Vars(r)["symbol"])
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return "", false
	}
	if len(symbol) > maxSymbolLen || strings.ContainsAny(symbol, " /?#") {
		respondError(w, http.StatusBadRequest, "invalid symbol")
		return "", false
	}
	return symbol, true
}
