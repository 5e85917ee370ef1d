package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookupFunc mirrors os.LookupEnv so tests can feed their own environment.
type lookupFunc func(string) (string, bool)

type env struct {
	lookup lookupFunc
	file   map[string]string
}

// get returns the environment value, then the config-file value, then def.
func (e env) get(k, d string) string {
	if v, ok := e.lookup(k); ok && v != "" {
		return v
	}
	if v, ok := e.file[k]; ok && v != "" {
		return v
	}
	return d
}

func (e env) str(k, d string) string { return strings.TrimSpace(e.get(k, d)) }

func (e env) boolean(k string, d bool) bool {
	switch e.get(k, "") {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func (e env) integer(k string, d int) int {
	v := e.get(k, "")
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func (e env) duration(k string, d time.Duration) time.Duration {
	v := e.get(k, "")
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func osEnv() env { return env{lookup: os.LookupEnv} }

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
