package main

import (
	"message-board/repositories"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	backendJSON   = repositories.BackendJSON
	backendBadger = repositories.BackendBadger
)

type Config struct {
	DataPath          string        `env:"DATA_PATH,default=data/messages.json"`
	UploadRoot        string        `env:"UPLOAD_ROOT,default=uploads"`
	StoreBackend      string        `env:"STORE_BACKEND,default=json"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=data/badger"`
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	AdminPassword     string        `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=1h"`
	MaxUploadSizeMB   int           `env:"MAX_UPLOAD_SIZE_MB,default=50"`
	MinFreeDiskMB     int           `env:"MIN_FREE_DISK_MB,default=0"`
	GCInterval        time.Duration `env:"GC_INTERVAL,default=0s"`
	GCGrace           time.Duration `env:"GC_GRACE,default=10m"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	CensoredWordsDir  string        `env:"CENSORED_WORDS_DIR"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

// Words splits CENSORED_WORDS on commas, dropping blanks.
func (c Config) Words() []string {
	return lo.Compact(lo.Map(strings.Split(c.CensoredWords, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

func (c Config) ReplacementRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CharReplacement)
	if r == utf8.RuneError {
		return '*'
	}
	return r
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

func (c Config) MinFreeBytes() uint64 {
	return uint64(max(c.MinFreeDiskMB, 0)) << 20
}
