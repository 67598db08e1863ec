package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/strandcoach/internal/platform/logger"
)

func lookup(key string, log *logger.Logger) (string, bool, *logger.Logger) {
	if log != nil {
		log = log.With("env_var", key)
	}
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != "", log
}

func String(key, def string, log *logger.Logger) string {
	v, ok, log := lookup(key, log)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", def)
		}
		return def
	}
	return v
}

func Int(key string, def int, log *logger.Logger) int {
	v, ok, log := lookup(key, log)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as int, using default", "provided", v, "default", def, "error", err)
		}
		return def
	}
	return i
}

func Bool(key string, def bool, log *logger.Logger) bool {
	v, ok, _ := lookup(key, log)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Duration accepts Go duration strings ("90s", "5m") or bare seconds.
func Duration(key string, def time.Duration, log *logger.Logger) time.Duration {
	v, ok, log := lookup(key, log)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if log != nil {
		log.Warn("Environment variable could not be parsed as duration, using default", "provided", v, "default", def.String())
	}
	return def
}

func List(key string, log *logger.Logger) []string {
	v, ok, _ := lookup(key, log)
	if !ok {
		return nil
	}
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Float(key string, def float64, log *logger.Logger) float64 {
	v, ok, log := lookup(key, log)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as float, using default", "provided", v, "default", def, "error", err)
		}
		return def
	}
	return f
}
