// Package config obsahuje společné pomocné funkce pro načítání konfigurace
// z ENV proměnných (12-Factor App). Každá služba si nad nimi staví vlastní Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv načte proměnné ze souborů .env (pokud existují).
// Už nastavené ENV proměnné mají přednost, soubor je jen pro lokální vývoj.
// Chybějící soubor není chyba.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("cannot load %s: %w", f, err)
		}
	}
	return nil
}

// GetEnv vrátí hodnotu proměnné, nebo fallback, pokud v OS neexistuje.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetInt čte celé číslo. Neplatná hodnota je chyba - radši nenastartovat,
// než běžet s jiným počtem senzorů, než si kdo myslí.
func GetInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

// GetDuration čte Go duration ("1s", "500ms"). Holé číslo bere jako milisekundy,
// aby fungovaly i staré konfigurace typu SENSOR_INTERVAL=1000.
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	v = strings.TrimSpace(v)
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}

// GetBool čte true/false/1/0. Neplatná hodnota -> fallback.
func GetBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

// SplitCSV rozdělí "a, b,,c" na ["a" "b" "c"].
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
