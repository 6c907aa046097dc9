package config

import (
	"fmt"
	"strings"
)

type SessionBackend string // Implements envconfig.Decoder

const SessionBackendMemory SessionBackend = "memory"
const SessionBackendRedis SessionBackend = "redis"

func (b *SessionBackend) Decode(value string) error {
	switch strings.ToLower(value) {
	case "":
		fallthrough
	case "memory":
		*b = SessionBackendMemory
		return nil
	case "redis":
		*b = SessionBackendRedis
		return nil
	}

	return fmt.Errorf("unsupported session backend '%s'", value)
}

type KeywordSource string // Implements envconfig.Decoder

const KeywordSourceFile KeywordSource = "file"
const KeywordSourcePostgres KeywordSource = "postgres"

func (s *KeywordSource) Decode(value string) error {
	switch strings.ToLower(value) {
	case "":
		fallthrough
	case "file":
		*s = KeywordSourceFile
		return nil
	case "postgres":
		*s = KeywordSourcePostgres
		return nil
	}

	return fmt.Errorf("unsupported keyword source '%s'", value)
}
